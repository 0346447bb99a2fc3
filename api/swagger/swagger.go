package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gato Booking API",
        "description": "Recurrence and slot-availability engine for residential service bookings",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Availability", "description": "Bookable provider slots"},
        {"name": "Bookings", "description": "Booking creation and cancellation"},
        {"name": "Calendar", "description": "Reconciled provider calendar and exports"},
        {"name": "RecurringRules", "description": "Recurring booking rules"}
    ],
    "paths": {
        "/providers/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Bookable slots for a provider listing",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "listingId", "in": "query", "type": "string", "required": true},
                    {"name": "duration", "in": "query", "type": "integer"},
                    {"name": "week", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Ordered slot list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a provider time window",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflicting booking", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}/cancel": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Cancel a booking",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/providers/{id}/calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Reconciled provider calendar",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "from", "in": "query", "type": "string", "required": true},
                    {"name": "to", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Occurrence list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/providers/{id}/agenda/export": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Provider agenda as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "from", "in": "query", "type": "string", "required": true},
                    {"name": "to", "in": "query", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        },
        "/recurring-rules": {
            "get": {
                "tags": ["RecurringRules"],
                "summary": "Recurring rules of the calling user",
                "responses": {
                    "200": {"description": "Rule list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recurring-rules/{id}": {
            "get": {
                "tags": ["RecurringRules"],
                "summary": "One recurring rule",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Rule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["RecurringRules"],
                "summary": "Stop a recurring rule",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "CreateBookingRequest": {
            "type": "object",
            "required": ["provider_id", "listing_id", "start_time", "end_time"],
            "properties": {
                "provider_id": {"type": "string"},
                "listing_id": {"type": "string"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "recurrence": {"type": "string", "enum": ["none", "once", "weekly", "biweekly", "triweekly", "monthly"]},
                "notes": {"type": "string"}
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
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
