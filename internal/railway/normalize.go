package railway

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Partially failed GraphQL queries still come back as HTTP 200 with null or
// absent payload fields, so every accessor here defaults missing data to an
// empty value instead of propagating a nil.

// UserInfo is the normalized identity+balance payload.
type UserInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	CreatedAt   string `json:"createdAt"`
	CreditCents int64  `json:"credit"`
}

// Environment is one project environment.
type Environment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Service is one deployable unit inside a project.
type Service struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project is the normalized project payload.
type Project struct {
	ID           string        `json:"_id"`
	Name         string        `json:"name"`
	Region       string        `json:"region"`
	CreatedAt    string        `json:"createdAt"`
	Environments []Environment `json:"environments"`
	Services     []Service     `json:"services"`
}

// AihubBalance is the auxiliary credit balance.
type AihubBalance struct {
	Credit float64 `json:"credit"`
	Used   float64 `json:"used"`
}

// UsageRow is one measurement row from a usage report.
type UsageRow struct {
	ProjectID string
	ServiceID string
	Day       string
	Value     float64
}

// LogLine is one entry from the service logs query.
type LogLine struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
}

// ErrorMessage extracts the first message from a GraphQL errors array.
// Returns "" when the envelope carries no errors.
func ErrorMessage(res gjson.Result) string {
	errs := res.Get("errors")
	if !errs.Exists() || len(errs.Array()) == 0 {
		return ""
	}
	var msgs []string
	errs.ForEach(func(_, e gjson.Result) bool {
		if m := e.Get("message").String(); m != "" {
			msgs = append(msgs, m)
		}
		return true
	})
	if len(msgs) == 0 {
		return "upstream request failed"
	}
	return strings.Join(msgs, "; ")
}

// ParseUser normalizes the me query payload.
func ParseUser(res gjson.Result) UserInfo {
	me := res.Get("data.me")
	return UserInfo{
		ID:          me.Get("id").String(),
		Name:        me.Get("name").String(),
		Email:       me.Get("email").String(),
		Username:    me.Get("username").String(),
		Avatar:      me.Get("avatar").String(),
		CreatedAt:   me.Get("createdAt").String(),
		CreditCents: me.Get("customer.creditBalance").Int(),
	}
}

// ParseProjects normalizes the projects connection. Absent payloads yield
// an empty slice.
func ParseProjects(res gjson.Result) []Project {
	projects := []Project{}
	res.Get("data.projects.edges").ForEach(func(_, edge gjson.Result) bool {
		node := edge.Get("node")
		p := Project{
			ID:           node.Get("id").String(),
			Name:         node.Get("name").String(),
			Region:       node.Get("region").String(),
			CreatedAt:    node.Get("createdAt").String(),
			Environments: []Environment{},
			Services:     []Service{},
		}
		node.Get("environments.edges").ForEach(func(_, e gjson.Result) bool {
			p.Environments = append(p.Environments, Environment{
				ID:   e.Get("node.id").String(),
				Name: e.Get("node.name").String(),
			})
			return true
		})
		node.Get("services.edges").ForEach(func(_, s gjson.Result) bool {
			p.Services = append(p.Services, Service{
				ID:   s.Get("node.id").String(),
				Name: s.Get("node.name").String(),
			})
			return true
		})
		projects = append(projects, p)
		return true
	})
	return projects
}

// ParseAihub normalizes the auxiliary balance payload.
func ParseAihub(res gjson.Result) AihubBalance {
	b := res.Get("data.aihubBalance")
	return AihubBalance{
		Credit: b.Get("credit").Float(),
		Used:   b.Get("used").Float(),
	}
}

// ParseUsageRows normalizes a usage report found at the given data field
// ("usage" or "aggregatedUsage").
func ParseUsageRows(res gjson.Result, field string) []UsageRow {
	rows := []UsageRow{}
	res.Get("data." + field).ForEach(func(_, row gjson.Result) bool {
		rows = append(rows, UsageRow{
			ProjectID: rowProjectID(row),
			ServiceID: row.Get("serviceId").String(),
			Day:       row.Get("ts").String(),
			Value:     row.Get("value").Float(),
		})
		return true
	})
	return rows
}

// rowProjectID reads the project id under both spellings the API has been
// observed to use. Neither fallback is known to be dead, so keep both.
func rowProjectID(row gjson.Result) string {
	if id := row.Get("projectId"); id.Exists() {
		return id.String()
	}
	return row.Get("project.id").String()
}

// ParseLogs normalizes the service logs payload.
func ParseLogs(res gjson.Result) []LogLine {
	lines := []LogLine{}
	res.Get("data.logs").ForEach(func(_, l gjson.Result) bool {
		lines = append(lines, LogLine{
			Timestamp: l.Get("timestamp").String(),
			Message:   l.Get("message").String(),
			Severity:  l.Get("severity").String(),
		})
		return true
	})
	return lines
}
