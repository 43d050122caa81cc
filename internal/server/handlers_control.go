package server

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/railwatch/railwatch/internal/railway"
)

// Control operations forward a single GraphQL mutation or query and
// translate the result into {success, message}. Upstream transport faults
// map to 500, GraphQL-level errors to 400.

func (s *Server) handleProjectRename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		ProjectID string `json:"projectId"`
		NewName   string `json:"newName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Token == "" || req.ProjectID == "" || req.NewName == "" {
		writeError(w, http.StatusBadRequest, errValidation, "token, projectId and newName are required")
		return
	}

	res, ok := s.forward(w, r, req.Token, railway.MutationProjectRename, map[string]any{
		"id":   req.ProjectID,
		"name": req.NewName,
	})
	if !ok {
		return
	}

	name := res.Get("data.projectUpdate.name").String()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("project renamed to %s", name),
	})
}

func (s *Server) handleServicePause(w http.ResponseWriter, r *http.Request) {
	s.handleServiceToggle(w, r, railway.MutationServicePause, "data.serviceInstancePause", "service paused")
}

func (s *Server) handleServiceRestart(w http.ResponseWriter, r *http.Request) {
	s.handleServiceToggle(w, r, railway.MutationServiceRestart, "data.serviceInstanceRestart", "service restarted")
}

func (s *Server) handleServiceToggle(w http.ResponseWriter, r *http.Request, mutation, resultPath, message string) {
	var req struct {
		Token         string `json:"token"`
		ServiceID     string `json:"serviceId"`
		EnvironmentID string `json:"environmentId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Token == "" || req.ServiceID == "" || req.EnvironmentID == "" {
		writeError(w, http.StatusBadRequest, errValidation, "token, serviceId and environmentId are required")
		return
	}

	res, ok := s.forward(w, r, req.Token, mutation, map[string]any{
		"serviceId":     req.ServiceID,
		"environmentId": req.EnvironmentID,
	})
	if !ok {
		return
	}

	if !res.Get(resultPath).Bool() {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "upstream declined the operation",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": message})
}

func (s *Server) handleServiceLogs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token         string `json:"token"`
		ServiceID     string `json:"serviceId"`
		EnvironmentID string `json:"environmentId"`
		ProjectID     string `json:"projectId"`
		Limit         int    `json:"limit"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Token == "" || req.ServiceID == "" || req.EnvironmentID == "" || req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, errValidation, "token, serviceId, environmentId and projectId are required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 100
	}

	res, ok := s.forward(w, r, req.Token, railway.QueryServiceLogs, map[string]any{
		"projectId":     req.ProjectID,
		"environmentId": req.EnvironmentID,
		"serviceId":     req.ServiceID,
		"limit":         req.Limit,
	})
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"logs":    railway.ParseLogs(res),
	})
}

// forward executes one upstream operation and writes the error envelope on
// failure. Returns ok=false once a response has been written.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, token, operation string, variables map[string]any) (gjson.Result, bool) {
	res, err := s.client.Execute(r.Context(), token, operation, variables)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errUpstream, err.Error())
		return gjson.Result{}, false
	}
	if msg := railway.ErrorMessage(res); msg != "" {
		writeError(w, http.StatusBadRequest, errUpstream, msg)
		return gjson.Result{}, false
	}
	return res, true
}
