// Package docs registers the OpenAPI description of the API with swag. It
// is served by gin-swagger under /swagger.
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
        "/summary/trip/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["summary"],
                "summary": "Get the settlement of a trip",
                "parameters": [
                    {"type": "integer", "description": "Trip ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TripSummary"}},
                    "400": {"description": "Invalid trip ID", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "404": {"description": "Trip not found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/summary/trip/{id}/close": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["summary"],
                "summary": "Close a trip and email the settlement to its participants",
                "parameters": [
                    {"type": "integer", "description": "Trip ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TripCloseResult"}},
                    "404": {"description": "Trip not found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "409": {"description": "Trip already closed or being closed", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/summary/trip/{id}/report": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["summary"],
                "summary": "Download link for a closed trip's settlement report",
                "parameters": [
                    {"type": "integer", "description": "Trip ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ReportLink"}},
                    "404": {"description": "No report archived", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "502": {"description": "Report storage unavailable", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/currencies": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "List active currencies",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.Currency"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Create a currency (admin)",
                "parameters": [
                    {"description": "Currency", "name": "currency", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreateCurrencyParams"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.Currency"}},
                    "400": {"description": "Invalid currency", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "409": {"description": "Currency exists", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/currencies/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Pull the rate feed now (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/currency.RefreshResult"}},
                    "409": {"description": "Refresh already running", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "502": {"description": "Rate feed unavailable", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/currencies/{code}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Get a currency",
                "parameters": [
                    {"type": "string", "description": "ISO 4217 code", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Currency"}},
                    "404": {"description": "Currency not found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Update a currency (admin)",
                "parameters": [
                    {"type": "string", "description": "ISO 4217 code", "name": "code", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "patch", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.UpdateCurrencyParams"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Currency"}},
                    "404": {"description": "Currency not found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["currencies"],
                "summary": "Deactivate a currency (admin)",
                "parameters": [
                    {"type": "string", "description": "ISO 4217 code", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Currency not found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/currencies/{code}/rate": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Set the current exchange rate (admin)",
                "parameters": [
                    {"type": "string", "description": "ISO 4217 code", "name": "code", "in": "path", "required": true},
                    {"description": "Rate", "name": "rate", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateRateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Currency"}},
                    "400": {"description": "Invalid rate", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/currencies/{code}/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Exchange rate history, newest first",
                "parameters": [
                    {"type": "string", "description": "ISO 4217 code", "name": "code", "in": "path", "required": true},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Rows to skip", "name": "offset", "in": "query"},
                    {"type": "string", "description": "Earliest date (YYYY-MM-DD or RFC 3339)", "name": "from", "in": "query"},
                    {"type": "string", "description": "Latest date (YYYY-MM-DD or RFC 3339)", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.ExchangeRate"}}}
                }
            }
        }
    },
    "definitions": {
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "CONFLICT"},
                "message": {"type": "string", "example": "Trip is already closed"},
                "details": {"type": "string"},
                "code": {"type": "string", "example": "409"},
                "reason": {"type": "string", "example": "TRIP_ALREADY_CLOSED"}
            }
        },
        "types.ParticipantExpense": {
            "type": "object",
            "properties": {
                "participantId": {"type": "integer"},
                "name": {"type": "string"},
                "surname": {"type": "string"},
                "email": {"type": "string"},
                "totalSpent": {"type": "number"},
                "expenseCount": {"type": "integer"}
            }
        },
        "types.Payment": {
            "type": "object",
            "properties": {
                "from": {"type": "string", "example": "Ben Kowalski"},
                "to": {"type": "string", "example": "Anna Nowak"},
                "amount": {"type": "number", "example": 25.5}
            }
        },
        "types.TripSummary": {
            "type": "object",
            "properties": {
                "tripId": {"type": "integer"},
                "tripTitle": {"type": "string"},
                "destination": {"type": "string"},
                "startDate": {"type": "string", "format": "date-time"},
                "endDate": {"type": "string", "format": "date-time"},
                "referenceCurrency": {"type": "string", "example": "PLN"},
                "totalExpenses": {"type": "number"},
                "expensesByCurrency": {"type": "object", "additionalProperties": {"type": "number"}},
                "participantExpenses": {"type": "array", "items": {"$ref": "#/definitions/types.ParticipantExpense"}},
                "paymentSummary": {"type": "array", "items": {"$ref": "#/definitions/types.Payment"}}
            }
        },
        "types.TripCloseResult": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "emailsSent": {"type": "integer"},
                "summary": {"$ref": "#/definitions/types.TripSummary"}
            }
        },
        "types.ReportLink": {
            "type": "object",
            "properties": {
                "tripId": {"type": "integer"},
                "url": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "types.Currency": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "EUR"},
                "name": {"type": "string", "example": "Euro"},
                "currentRate": {"type": "number", "example": 4.3},
                "isActive": {"type": "boolean"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "types.ExchangeRate": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "currencyId": {"type": "string"},
                "rate": {"type": "number"},
                "source": {"type": "string"},
                "isActive": {"type": "boolean"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "types.CreateCurrencyParams": {
            "type": "object",
            "required": ["code", "name"],
            "properties": {
                "code": {"type": "string", "example": "EUR"},
                "name": {"type": "string", "example": "Euro"},
                "currentRate": {"type": "number", "example": 4.3},
                "isActive": {"type": "boolean"}
            }
        },
        "types.UpdateCurrencyParams": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "currentRate": {"type": "number"},
                "isActive": {"type": "boolean"}
            }
        },
        "handlers.UpdateRateRequest": {
            "type": "object",
            "properties": {
                "rate": {"type": "number", "example": 4.31},
                "source": {"type": "string", "example": "manual"}
            }
        },
        "currency.RefreshResult": {
            "type": "object",
            "properties": {
                "fetched": {"type": "integer"},
                "updated": {"type": "integer"},
                "created": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "TripSplit API",
	Description:      "Trip expense settlement, trip closure and currency management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
