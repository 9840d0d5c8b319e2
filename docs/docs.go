package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "ticketgate API",
    "description": "Work-instruction tickets for LINE/MEO operations with an AI completeness review",
    "version": "1.0"
  },
  "basePath": "/",
  "securityDefinitions": {
    "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
    "AdminKey": {"type": "apiKey", "name": "X-Admin-Key", "in": "header"}
  },
  "paths": {
    "/healthz": {"get": {"tags": ["health"], "summary": "Database liveness"}},
    "/api/categories": {"get": {"tags": ["review"], "summary": "List ticket categories"}},
    "/api/ai/review": {"post": {"tags": ["review"], "summary": "Review ticket instructions", "security": [{"BearerAuth": []}]}},
    "/api/tickets": {
      "get": {"tags": ["tickets"], "summary": "List tickets", "security": [{"BearerAuth": []}]},
      "post": {"tags": ["tickets"], "summary": "Create ticket", "security": [{"BearerAuth": []}]}
    },
    "/api/tickets/stats": {"get": {"tags": ["tickets"], "summary": "Ticket counts per status", "security": [{"BearerAuth": []}]}},
    "/api/tickets/{id}": {
      "get": {"tags": ["tickets"], "summary": "Ticket details", "security": [{"BearerAuth": []}]},
      "patch": {"tags": ["tickets"], "summary": "Edit draft", "security": [{"BearerAuth": []}]},
      "delete": {"tags": ["tickets"], "summary": "Delete ticket", "security": [{"BearerAuth": []}]}
    },
    "/api/tickets/{id}/review": {"post": {"tags": ["tickets"], "summary": "Review stored draft", "security": [{"BearerAuth": []}]}},
    "/api/tickets/{id}/status": {"patch": {"tags": ["tickets"], "summary": "Change ticket status", "security": [{"BearerAuth": []}]}},
    "/api/projects": {
      "get": {"tags": ["projects"], "summary": "List projects", "security": [{"BearerAuth": []}]},
      "post": {"tags": ["projects"], "summary": "Create project", "security": [{"BearerAuth": []}]}
    },
    "/api/projects/{id}": {
      "get": {"tags": ["projects"], "summary": "Project details", "security": [{"BearerAuth": []}]},
      "patch": {"tags": ["projects"], "summary": "Update project", "security": [{"BearerAuth": []}]},
      "delete": {"tags": ["projects"], "summary": "Delete project and its tickets", "security": [{"BearerAuth": []}]}
    },
    "/api/projects/import": {"post": {"tags": ["projects"], "summary": "Import projects from CSV", "security": [{"AdminKey": []}]}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
