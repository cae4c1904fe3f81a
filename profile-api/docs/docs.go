// Package docs registers the OpenAPI description served by gin-swagger.
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
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        },
        "/datasets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["summaries"],
                "summary": "List datasets",
                "parameters": [
                    {"type": "string", "description": "Locale (ne, en)", "name": "lang", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DatasetsResponse"}}
                }
            }
        },
        "/summaries/{dataset}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["summaries"],
                "summary": "Summarize a dataset",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "dataset", "in": "path", "required": true},
                    {"type": "string", "description": "Locale (ne, en)", "name": "lang", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/stats.Presentation"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/summaries/{dataset}/structured-data": {
            "get": {
                "produces": ["application/ld+json"],
                "tags": ["summaries"],
                "summary": "Dataset JSON-LD",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "dataset", "in": "path", "required": true},
                    {"type": "string", "description": "Locale (ne, en)", "name": "lang", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/summaries/{dataset}/chart.png": {
            "get": {
                "produces": ["image/png"],
                "tags": ["summaries"],
                "summary": "Dataset bar chart",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "dataset", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "PNG image", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/summaries/{dataset}/report": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Latest report of a dataset",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "dataset", "in": "path", "required": true},
                    {"type": "string", "description": "Locale (ne, en)", "name": "lang", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ReportResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/records/{dataset}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "List stored records of a dataset",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "dataset", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.RecordsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/records/{dataset}/{unit}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Create or replace a record",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "dataset", "in": "path", "required": true},
                    {"type": "string", "description": "Unit key", "name": "unit", "in": "path", "required": true},
                    {"description": "Record fields", "name": "record", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.RecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entities.Record"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["records"],
                "summary": "Delete a record",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "dataset", "in": "path", "required": true},
                    {"type": "string", "description": "Unit key", "name": "unit", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/reports/{dataset}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Generate an Excel report",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "dataset", "in": "path", "required": true},
                    {"type": "string", "description": "Locale (ne, en)", "name": "lang", "in": "query"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.ReportResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Report metadata",
                "parameters": [
                    {"type": "string", "description": "Report ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ReportResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/reports/{id}/download": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["reports"],
                "summary": "Download report by ID",
                "parameters": [
                    {"type": "string", "description": "Report ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Excel file", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "time": {"type": "string"}
            }
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "version": {"type": "string"},
                "time": {"type": "string"},
                "services": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "api.DatasetInfo": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "records": {"type": "integer"}
            }
        },
        "api.DatasetsResponse": {
            "type": "object",
            "properties": {
                "locale": {"type": "string"},
                "datasets": {"type": "array", "items": {"$ref": "#/definitions/api.DatasetInfo"}}
            }
        },
        "api.RecordRequest": {
            "type": "object",
            "required": ["fields"],
            "properties": {
                "fields": {"type": "object", "additionalProperties": true},
                "source": {"type": "string"}
            }
        },
        "api.RecordsResponse": {
            "type": "object",
            "properties": {
                "dataset": {"type": "string"},
                "count": {"type": "integer"},
                "records": {"type": "array", "items": {"$ref": "#/definitions/entities.Record"}}
            }
        },
        "api.ReportResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dataset": {"type": "string"},
                "locale": {"type": "string"},
                "file_name": {"type": "string"},
                "file_size": {"type": "integer"},
                "checksum": {"type": "string"},
                "download_url": {"type": "string"},
                "generated_at": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "entities.Record": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dataset": {"type": "string"},
                "unit_key": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": true},
                "source": {"type": "string"},
                "updated_at": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "stats.ChartPoint": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "label": {"type": "string"},
                "value": {"type": "number"},
                "percentage": {"type": "number"}
            }
        },
        "stats.Scalar": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "label": {"type": "string"},
                "value": {"type": "number"},
                "display": {"type": "string"}
            }
        },
        "stats.Table": {
            "type": "object",
            "properties": {
                "columns": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "stats.Issue": {
            "type": "object",
            "properties": {
                "unit": {"type": "string"},
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "stats.Presentation": {
            "type": "object",
            "properties": {
                "dataset": {"type": "string"},
                "locale": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "table": {"$ref": "#/definitions/stats.Table"},
                "chart": {"type": "array", "items": {"$ref": "#/definitions/stats.ChartPoint"}},
                "scalars": {"type": "array", "items": {"$ref": "#/definitions/stats.Scalar"}},
                "narrative": {"type": "array", "items": {"type": "string"}},
                "structured_data": {"type": "object"},
                "issues": {"type": "array", "items": {"$ref": "#/definitions/stats.Issue"}}
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
	Title:            "Digital Profile API",
	Description:      "Ward-level statistics of the municipal digital profile: summaries, charts, structured data and Excel reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
