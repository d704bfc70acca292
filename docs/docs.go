// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g main.go
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
        "/workspaces": {
            "post": {
                "produces": ["application/json"],
                "tags": ["workspaces"],
                "summary": "Create a planner workspace",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/workspaces/{wsID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["workspaces"],
                "summary": "Get a workspace",
                "parameters": [{"type": "string", "name": "wsID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/workspaces/{wsID}/itineraries": {
            "post": {
                "produces": ["application/json"],
                "tags": ["itineraries"],
                "summary": "Create an itinerary",
                "parameters": [{"type": "string", "name": "wsID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/workspaces/{wsID}/itineraries/{itID}/save": {
            "post": {
                "produces": ["application/json"],
                "tags": ["itineraries"],
                "summary": "Save an itinerary",
                "parameters": [
                    {"type": "string", "name": "wsID", "in": "path", "required": true},
                    {"type": "string", "name": "itID", "in": "path", "required": true}
                ],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}}
            }
        },
        "/workspaces/{wsID}/drag/drop": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["drag"],
                "summary": "Drop the dragged item",
                "parameters": [{"type": "string", "name": "wsID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/workspaces/{wsID}/messages": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Send a chat message",
                "parameters": [{"type": "string", "name": "wsID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/workspaces/{wsID}/live/adjust": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["live"],
                "summary": "Propose a mood-based adjustment",
                "parameters": [{"type": "string", "name": "wsID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/workspaces/{wsID}/bookings/{kind}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Booking lookup",
                "parameters": [
                    {"type": "string", "name": "wsID", "in": "path", "required": true},
                    {"type": "string", "name": "kind", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/travel/search": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["travel"],
                "summary": "Search travel options",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Travel Planner API",
	Description:      "Itinerary workspaces, chat suggestions, live re-routing and travel search.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
