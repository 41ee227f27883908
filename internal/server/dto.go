package server

import (
	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/editor"
	"github.com/bichil/orgchart/pkg/snapshot"
)

type chartResponse struct {
	snapshot.Document
	Root        string   `json:"root,omitempty"`
	Slot        string   `json:"slot,omitempty"`
	Mode        string   `json:"mode"`
	Preview     bool     `json:"preview"`
	Dirty       bool     `json:"dirty"`
	HasBaseline bool     `json:"hasBaseline"`
	Orphans     []string `json:"orphans"`
}

func newChartResponse(ed *editor.Editor) chartResponse {
	g := ed.Chart()
	resp := chartResponse{
		Document:    snapshot.FromGraph(g),
		Slot:        ed.Slot(),
		Mode:        ed.Mode().String(),
		Preview:     ed.Preview(),
		Dirty:       ed.Dirty(),
		HasBaseline: ed.HasBaseline(),
		Orphans:     []string{},
	}
	if root, ok := g.Root(); ok {
		resp.Root = root.ID
	}
	for _, n := range g.Orphans() {
		resp.Orphans = append(resp.Orphans, n.ID)
	}
	return resp
}

type transitionDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
	Step string `json:"step"`
}

type stateResponse struct {
	Mode        string          `json:"mode"`
	Preview     bool            `json:"preview"`
	Dirty       bool            `json:"dirty"`
	HasBaseline bool            `json:"hasBaseline"`
	Source      string          `json:"source,omitempty"`
	PendingRoot string          `json:"pendingRoot,omitempty"`
	Candidates  []chart.Node    `json:"candidates,omitempty"`
	Transitions []transitionDTO `json:"transitions"`
}

func newStateResponse(ed *editor.Editor) stateResponse {
	resp := stateResponse{
		Mode:        ed.Mode().String(),
		Preview:     ed.Preview(),
		Dirty:       ed.Dirty(),
		HasBaseline: ed.HasBaseline(),
		Source:      string(ed.Source()),
		Candidates:  ed.Candidates(),
		Transitions: []transitionDTO{},
	}
	if n, ok := ed.PendingRoot(); ok {
		resp.PendingRoot = n.ID
	}
	for _, t := range ed.Transitions() {
		resp.Transitions = append(resp.Transitions, transitionDTO{From: t.From.String(), To: t.To.String(), Step: t.Step})
	}
	return resp
}

type createNodeRequest struct {
	ParentID string  `json:"parentId,omitempty"`
	Label    *string `json:"label,omitempty" validate:"omitempty,max=256"`
}

type updateNodeRequest struct {
	Label    *string         `json:"label,omitempty" validate:"omitempty,max=256"`
	Position *chart.Position `json:"position,omitempty"`
}

type createEdgeRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required,nefield=Source"`
}

type promoteRequest struct {
	Candidate string `json:"candidate" validate:"required"`
}

type scatterRequest struct {
	Seed *uint64 `json:"seed,omitempty"`
}

type previewRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type deleteResponse struct {
	Result     string       `json:"result"`
	Removed    []string     `json:"removed,omitempty"`
	Candidates []chart.Node `json:"candidates,omitempty"`
}

func deleteResultName(r editor.DeleteResult) string {
	switch r {
	case editor.Deleted:
		return "deleted"
	case editor.NeedsNewRoot:
		return "needs_new_root"
	default:
		return "noop"
	}
}
