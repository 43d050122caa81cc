package server

import (
	"errors"
	"net/http"

	"github.com/railwatch/railwatch/internal/catalog"
	"github.com/railwatch/railwatch/internal/railway"
	"github.com/railwatch/railwatch/internal/usage"
)

type batchRequest struct {
	Accounts []catalog.Account `json:"accounts"`
}

func (s *Server) handleTempAccounts(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	results := s.agg.FetchAll(r.Context(), req.Accounts)
	out := make([]map[string]any, 0, len(results))
	for _, res := range results {
		out = append(out, accountEntry(res))
	}
	writeJSON(w, http.StatusOK, out)
}

// accountEntry shapes one batch result. Failures are reported inline; they
// never escalate to an HTTP-level error for the whole batch.
func accountEntry(res usage.Result) map[string]any {
	if res.Failed() {
		return map[string]any{
			"name":    res.Account.Name,
			"success": false,
			"error":   res.Err.Error(),
		}
	}
	return map[string]any{
		"name":    res.Account.Name,
		"success": true,
		"data": map[string]any{
			"id":                 res.User.ID,
			"name":               res.User.Name,
			"email":              res.User.Email,
			"username":           res.User.Username,
			"avatar":             res.User.Avatar,
			"credit":             res.User.CreditCents,
			"totalUsage":         res.Snapshot.TotalUsage.InexactFloat64(),
			"totalCost":          res.MonthCost.InexactFloat64(),
			"freeQuotaLimit":     usage.FreeQuota.InexactFloat64(),
			"freeQuotaRemaining": res.Snapshot.FreeQuotaRemaining.InexactFloat64(),
		},
		"aihub": res.Aihub,
	}
}

func (s *Server) handleTempProjects(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	results := s.agg.FetchAll(r.Context(), req.Accounts)
	out := make([]map[string]any, 0, len(results))
	for _, res := range results {
		if res.Failed() {
			out = append(out, map[string]any{
				"name":    res.Account.Name,
				"success": false,
				"error":   res.Err.Error(),
			})
			continue
		}
		projects := make([]map[string]any, 0, len(res.Projects))
		for _, p := range res.Projects {
			projects = append(projects, map[string]any{
				"_id":          p.ID,
				"name":         p.Name,
				"region":       p.Region,
				"environments": p.Environments,
				"services":     p.Services,
				"cost":         res.Snapshot.PerProjectCost[p.ID].InexactFloat64(),
				"hasCostData":  res.Snapshot.HasCostData[p.ID],
			})
		}
		out = append(out, map[string]any{
			"name":     res.Account.Name,
			"success":  true,
			"projects": projects,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleValidateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountName string `json:"accountName"`
		APIToken    string `json:"apiToken"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.APIToken == "" {
		writeError(w, http.StatusBadRequest, errValidation, "apiToken is required")
		return
	}

	res, err := s.client.Execute(r.Context(), req.APIToken, railway.QueryMe, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, errUpstream, err.Error())
		return
	}
	if msg := railway.ErrorMessage(res); msg != "" {
		writeError(w, http.StatusBadRequest, errUpstream, msg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"userData": railway.ParseUser(res),
	})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name   string `json:"name"`
		Token  string `json:"token"`
		Source string `json:"source"`
	}
	accounts := []entry{}
	for _, a := range s.accounts.Env() {
		accounts = append(accounts, entry{Name: a.Name, Token: a.Token, Source: catalog.SourceEnv})
	}
	for _, a := range s.accounts.Persisted() {
		accounts = append(accounts, entry{Name: a.Name, Token: a.Token, Source: catalog.SourceServer})
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	var req catalog.Account
	if !decodeBody(w, r, &req) {
		return
	}

	switch err := s.accounts.Add(req); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, catalog.ErrInvalidAccount):
		writeError(w, http.StatusBadRequest, errValidation, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, errPersistence, err.Error())
	}
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Index == nil {
		writeError(w, http.StatusBadRequest, errValidation, "index is required")
		return
	}

	removed, err := s.accounts.RemovePersisted(*req.Index)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errPersistence, err.Error())
		return
	}
	if !removed {
		writeError(w, http.StatusBadRequest, errValidation, "index out of range")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
