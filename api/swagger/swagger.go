package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "INGENZI Console Gateway",
        "description": "Backend-for-frontend gateway for the INGENZI administrative console",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "auth", "description": "Session lifecycle"},
        {"name": "shell", "description": "Role-gated dashboard composition"},
        {"name": "screens", "description": "Generic resource screens"},
        {"name": "files", "description": "Document file round-trip"},
        {"name": "admin", "description": "Gateway operational surface"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in and open a console session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Close the console session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["auth"],
                "summary": "Change the account password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["auth"],
                "summary": "Current principal snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/shell": {
            "get": {
                "tags": ["shell"],
                "summary": "Dashboard composition for the caller's role",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/shell/stats": {
            "get": {
                "tags": ["shell"],
                "summary": "Dashboard statistics panel",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/screens/{registry}": {
            "get": {
                "tags": ["screens"],
                "summary": "Mount a screen and load its first page",
                "parameters": [
                    {"name": "registry", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Screen snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Screen outside the caller's composition"}
                }
            },
            "delete": {
                "tags": ["screens"],
                "summary": "Unmount a screen, discarding its state",
                "parameters": [
                    {"name": "registry", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/screens/{registry}/pages": {
            "post": {
                "tags": ["screens"],
                "summary": "Navigate pages (absolute index or next/prev)",
                "parameters": [
                    {"name": "registry", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PageRequest"}}
                ],
                "responses": {
                    "200": {"description": "Screen snapshot"},
                    "400": {"description": "Page out of range"}
                }
            }
        },
        "/screens/{registry}/submit": {
            "post": {
                "tags": ["screens"],
                "summary": "Validate and submit the open draft",
                "parameters": [
                    {"name": "registry", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Screen snapshot after reload"},
                    "400": {"description": "Validation failed"}
                }
            }
        },
        "/screens/{registry}/export": {
            "get": {
                "tags": ["screens"],
                "summary": "Export the current page as CSV or PDF",
                "parameters": [
                    {"name": "registry", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Signed download link"}
                }
            }
        },
        "/files/{id}": {
            "get": {
                "tags": ["files"],
                "summary": "File metadata by id",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/download/{path}": {
            "get": {
                "tags": ["files"],
                "summary": "Stream a file binary by storage path",
                "parameters": [
                    {"name": "path", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Binary stream"}
                }
            }
        },
        "/admin/metrics": {
            "get": {
                "tags": ["admin"],
                "summary": "Aggregated gateway metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/audit": {
            "get": {
                "tags": ["admin"],
                "summary": "Recent console actions",
                "parameters": [
                    {"name": "username", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ChangePasswordRequest": {
            "type": "object",
            "required": ["old_password", "new_password"],
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string", "minLength": 6}
            }
        },
        "PageRequest": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "target": {"type": "string", "enum": ["next", "prev"]}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "pageSize": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
