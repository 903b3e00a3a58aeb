// Package docs registra el documento OpenAPI de la superficie HTTP (swag).
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["ops"],
                "summary": "Liveness",
                "responses": {"200": {"description": "ok", "schema": {"type": "string"}}}
            }
        },
        "/pets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Mis mascotas",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/pets.petResponse"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Perfil de mascota (owner)",
                "parameters": [{"type": "string", "description": "Pet ID", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.petResponse"}},
                    "403": {"description": "Forbidden", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}/reminders.ics": {
            "get": {
                "produces": ["text/calendar"],
                "tags": ["reminders"],
                "summary": "Feed iCalendar de reminders pendientes",
                "parameters": [{"type": "string", "description": "Pet ID", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}},
                    "403": {"description": "Forbidden", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            }
        },
        "/scheduler/runs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scheduler"],
                "summary": "Último resultado de cada trigger",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/scheduler.RunReport"}}}
                }
            }
        },
        "/scheduler/{trigger}/run": {
            "post": {
                "produces": ["application/json"],
                "tags": ["scheduler"],
                "summary": "Ejecuta un trigger ahora (daily | periodic)",
                "parameters": [{"type": "string", "description": "daily | periodic", "name": "trigger", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/scheduler.RunReport"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}},
                    "409": {"description": "Conflict", "schema": {"type": "string"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/scheduler.RunReport"}}
                }
            }
        }
    },
    "definitions": {
        "pets.petResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner_user_id": {"type": "string"},
                "name": {"type": "string"},
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "reminders.PassResult": {
            "type": "object",
            "properties": {
                "pass": {"type": "string"},
                "today": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "scanned": {"type": "integer"},
                "created": {"type": "integer"},
                "existing": {"type": "integer"},
                "updated": {"type": "integer"},
                "deleted": {"type": "integer"},
                "terminated": {"type": "integer"},
                "skipped": {"type": "integer"},
                "errored": {"type": "integer"},
                "notified": {"type": "integer"},
                "notify_failed": {"type": "integer"}
            }
        },
        "scheduler.RunReport": {
            "type": "object",
            "properties": {
                "trigger": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "passes": {"type": "array", "items": {"$ref": "#/definitions/reminders.PassResult"}},
                "error": {"type": "string"},
                "next_run": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo guarda la info exportada del documento.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PetCare+ Reminders",
	Description:      "Motor de reminders recurrentes: ops del scheduler y feed iCalendar por mascota.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
