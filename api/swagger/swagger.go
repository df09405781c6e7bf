package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CampusHour Tutoring API",
        "description": "Availability and booking scheduling engine for peer tutoring",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Availability", "description": "Tutor weekly availability"},
        {"name": "Bookings", "description": "Booking request lifecycle"},
        {"name": "Sessions", "description": "Confirmed tutoring sessions"},
        {"name": "Exports", "description": "Schedule and audit downloads"}
    ],
    "paths": {
        "/me/availability": {
            "put": {
                "tags": ["Availability"],
                "summary": "Replace the tutor's weekly availability",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WeeklyAvailability"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Invalid or overlapping ranges", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutors/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Get a tutor's weekly availability",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutors/{id}/availability/suggest": {
            "get": {
                "tags": ["Availability"],
                "summary": "Suggest the next free range on a given day",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "day", "in": "query", "required": true, "type": "integer"},
                    {"name": "after", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutors/{id}/slots": {
            "get": {
                "tags": ["Availability"],
                "summary": "List a tutor's bookable slots",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/me/availability/removals/preview": {
            "post": {
                "tags": ["Availability"],
                "summary": "Preview the sessions a window removal would cancel",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/RemoveWindowInput"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/me/availability/removals": {
            "post": {
                "tags": ["Availability"],
                "summary": "Remove availability windows, cancelling dependent sessions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/RemoveWindowInput"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Window not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Submit a booking request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/inbox": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List the tutor's pending booking requests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}/response": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Accept or reject a pending booking request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RespondRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already resolved or slot taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List the current user's sessions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/cancel": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Cancel a scheduled session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/CancelRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Not in a cancellable state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Inside the cancellation notice period", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/schedule.pdf": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the current user's schedule as PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/exports/cancellations.csv": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the cancellation audit trail as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "tutorId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "TimeRange": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "09:00"},
                "end": {"type": "string", "example": "12:00"}
            },
            "required": ["start", "end"]
        },
        "WeeklyAvailability": {
            "type": "object",
            "description": "Ranges keyed by ISO day of week (1=Monday .. 7=Sunday)",
            "additionalProperties": {
                "type": "array",
                "items": {"$ref": "#/definitions/TimeRange"}
            }
        },
        "RemoveWindowInput": {
            "type": "object",
            "properties": {
                "day_of_week": {"type": "integer"},
                "start": {"type": "string"},
                "end": {"type": "string"}
            },
            "required": ["day_of_week", "start", "end"]
        },
        "CandidateWindow": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2026-09-07"},
                "ranges": {"type": "array", "items": {"$ref": "#/definitions/TimeRange"}}
            },
            "required": ["date", "ranges"]
        },
        "SubmitBookingRequest": {
            "type": "object",
            "properties": {
                "tutor_id": {"type": "string"},
                "course_id": {"type": "string"},
                "windows": {"type": "array", "items": {"$ref": "#/definitions/CandidateWindow"}},
                "note": {"type": "string"},
                "materials_uri": {"type": "string"}
            },
            "required": ["tutor_id", "course_id", "windows"]
        },
        "RespondRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["accept", "reject"]},
                "date": {"type": "string"},
                "time": {"type": "string"}
            },
            "required": ["action"]
        },
        "CancelRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
