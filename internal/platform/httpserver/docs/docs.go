// Package docs registers the OpenAPI document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/games": {
            "get": {
                "summary": "List live games with optional metadata and tag filters",
                "parameters": [
                    {"name": "duration_id", "in": "query", "type": "string"},
                    {"name": "player_count_id", "in": "query", "type": "string"},
                    {"name": "tag_id", "in": "query", "type": "string"},
                    {"name": "cursor", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Create a game",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Slug conflict"}}
            }
        },
        "/api/v1/games/{slug}": {
            "get": {
                "summary": "Fetch a live game by slug, or a random one via the 'random' slug",
                "parameters": [{"name": "slug", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/games/{game_id}/names": {
            "get": {
                "summary": "List live name candidates with the canonical winner flagged",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Propose a name and back it with the caller's vote",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/games/{game_id}/votes": {
            "post": {
                "summary": "Cast or move the caller's single active vote",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            },
            "delete": {
                "summary": "Retract the caller's active vote",
                "responses": {"200": {"description": "OK"}, "404": {"description": "No active vote"}}
            }
        },
        "/api/v1/search/{index}": {
            "get": {
                "summary": "Query the tags or games search index",
                "parameters": [
                    {"name": "index", "in": "path", "required": true, "type": "string"},
                    {"name": "query", "in": "query", "type": "string"},
                    {"name": "hits_per_page", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/users/login": {
            "post": {
                "summary": "Exchange a bearer token for the caller's profile, creating it on first login",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid token"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "improvdb API",
	Description:      "Improv game catalog, name voting, and search.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
