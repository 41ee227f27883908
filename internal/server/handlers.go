package server

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bichil/orgchart/pkg/buildinfo"
	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/editor"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/snapshot"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) getChart(w http.ResponseWriter, _ *http.Request) {
	var resp chartResponse
	s.withEditor(func(ed *editor.Editor) { resp = newChartResponse(ed) })
	writeJSON(w, http.StatusOK, resp)
}

// putChart replaces the working chart with an uploaded snapshot document.
func (s *Server) putChart(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	g, err := snapshot.Decode(data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var resp chartResponse
	s.withEditor(func(ed *editor.Editor) {
		if err = ed.Replace(g); err == nil {
			resp = newChartResponse(ed)
		}
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getTree(w http.ResponseWriter, _ *http.Request) {
	var tree *chart.TreeNode
	s.withEditor(func(ed *editor.Editor) { tree = ed.Chart().Tree() })
	if tree == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "chart is empty"))
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	var resp stateResponse
	s.withEditor(func(ed *editor.Editor) { resp = newStateResponse(ed) })
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := decode(r, &req, true); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Label != nil {
		if err := errors.ValidateLabel(*req.Label); err != nil {
			s.writeError(w, err)
			return
		}
	}

	var (
		n   chart.Node
		err error
	)
	s.withEditor(func(ed *editor.Editor) {
		if req.ParentID != "" {
			var ok bool
			n, ok, err = ed.AddChild(req.ParentID)
			if err == nil && !ok {
				err = errors.New(errors.ErrCodeNotFound, "parent %q not found", req.ParentID)
			}
		} else {
			n, err = ed.AddNode()
		}
		if err == nil && req.Label != nil {
			if _, err = ed.Rename(n.ID, *req.Label); err == nil {
				n.Label = *req.Label
			}
		}
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeID")
	var req updateNodeRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}

	var (
		n     chart.Node
		found bool
		err   error
	)
	s.withEditor(func(ed *editor.Editor) {
		if req.Label != nil {
			if _, err = ed.Rename(id, *req.Label); err != nil {
				return
			}
		}
		if req.Position != nil {
			if _, err = ed.Move(id, *req.Position); err != nil {
				return
			}
		}
		n, found = ed.Chart().Node(id)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "unit %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// deleteNode removes a unit (?cascade=true removes its subtree too). Deleting
// the root does not remove anything: the editor enters root selection and the
// response lists the candidates with status 202.
func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeID")
	cascade := r.URL.Query().Get("cascade") == "true"

	var (
		resp deleteResponse
		err  error
	)
	s.withEditor(func(ed *editor.Editor) {
		action := editor.ActionDelete
		if cascade {
			action = editor.ActionDeleteSubtree
		}
		if ed.NeedsConfirm(action) && !confirmed(r) {
			err = errNeedsConfirm("delete")
			return
		}
		var result editor.DeleteResult
		if cascade {
			resp.Removed, result, err = ed.RequestDeleteSubtree(id)
		} else {
			result, err = ed.RequestDelete(id)
			if result == editor.Deleted {
				resp.Removed = []string{id}
			}
		}
		resp.Result = deleteResultName(result)
		if result == editor.NeedsNewRoot {
			resp.Candidates = ed.Candidates()
		}
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Result == "needs_new_root" {
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}

func (s *Server) createEdge(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	var (
		e   chart.Edge
		err error
	)
	s.withEditor(func(ed *editor.Editor) { e, err = ed.Connect(req.Source, req.Target) })
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "edgeID")
	var (
		ok  bool
		err error
	)
	s.withEditor(func(ed *editor.Editor) { ok, err = ed.Disconnect(id) })
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": ok})
}

func (s *Server) rootCandidates(w http.ResponseWriter, _ *http.Request) {
	var resp stateResponse
	s.withEditor(func(ed *editor.Editor) { resp = newStateResponse(ed) })
	if resp.Mode != editor.ModeSelectingRoot.String() {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "no root replacement in progress"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pendingRoot": resp.PendingRoot, "candidates": resp.Candidates})
}

func (s *Server) promoteRoot(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	var (
		resp chartResponse
		err  error
	)
	s.withEditor(func(ed *editor.Editor) {
		if ed.NeedsConfirm(editor.ActionChooseRoot) && !confirmed(r) {
			err = errNeedsConfirm("root replacement")
			return
		}
		if err = ed.ChooseRoot(req.Candidate); err == nil {
			resp = newChartResponse(ed)
		}
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) cancelRoot(w http.ResponseWriter, _ *http.Request) {
	var resp stateResponse
	s.withEditor(func(ed *editor.Editor) {
		ed.CancelRootSelection()
		resp = newStateResponse(ed)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) autoLayout(w http.ResponseWriter, _ *http.Request) {
	var (
		moved int
		err   error
	)
	s.withEditor(func(ed *editor.Editor) { moved, err = ed.AutoLayout() })
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"moved": moved})
}

func (s *Server) scatter(w http.ResponseWriter, r *http.Request) {
	var req scatterRequest
	if err := decode(r, &req, true); err != nil {
		s.writeError(w, err)
		return
	}
	seed := uint64(time.Now().UnixNano())
	if req.Seed != nil {
		seed = *req.Seed
	}
	var (
		moved int
		err   error
	)
	s.withEditor(func(ed *editor.Editor) { moved, err = ed.Scatter(seed) })
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "seed": seed})
}

func (s *Server) setPreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	var resp stateResponse
	s.withEditor(func(ed *editor.Editor) {
		ed.SetPreview(*req.Enabled)
		resp = newStateResponse(ed)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	var (
		resp chartResponse
		err  error
	)
	s.withEditor(func(ed *editor.Editor) {
		if ed.NeedsConfirm(editor.ActionSave) && !confirmed(r) {
			err = errNeedsConfirm("overwriting an unreadable slot")
			return
		}
		if err = ed.Save(r.Context()); err == nil {
			resp = newChartResponse(ed)
		}
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// reload rereads the slot, dropping unsaved edits. Dirty charts need
// ?confirm=true.
func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	var (
		resp   chartResponse
		source snapshot.Source
		err    error
	)
	s.withEditor(func(ed *editor.Editor) {
		if ed.NeedsConfirm(editor.ActionReset) && !confirmed(r) {
			err = errNeedsConfirm("reload")
			return
		}
		if source, err = ed.Reload(r.Context()); err == nil {
			resp = newChartResponse(ed)
		}
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": source, "chart": resp})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	var (
		resp chartResponse
		done bool
		err  error
	)
	s.withEditor(func(ed *editor.Editor) {
		if ed.NeedsConfirm(editor.ActionReset) && !confirmed(r) {
			err = errNeedsConfirm("reset")
			return
		}
		if done, err = ed.Reset(); err == nil {
			resp = newChartResponse(ed)
		}
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reset": done, "chart": resp})
}
