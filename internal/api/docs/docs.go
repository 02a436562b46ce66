// Package docs registers the OpenAPI document served under /swagger.
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
        "/records/validate": {
            "post": {
                "description": "Validate one insurance record and return its transformed form or the rejection reason",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Validate a record",
                "parameters": [
                    {
                        "description": "Raw record",
                        "name": "record",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                ],
                "responses": {
                    "200": {"description": "Validation outcome", "schema": {"$ref": "#/definitions/model.Outcome"}},
                    "400": {"description": "Invalid request payload"}
                }
            }
        },
        "/batches": {
            "post": {
                "description": "Split a batch of records into transformed and rejected rows; the run is recorded as a job",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Process a batch",
                "parameters": [
                    {
                        "description": "Records to process",
                        "name": "batch",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.BatchRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Batch result", "schema": {"$ref": "#/definitions/handler.BatchResponse"}},
                    "400": {"description": "Invalid request payload"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/jobs": {
            "get": {
                "description": "Get a list of all jobs with their current status",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List all jobs",
                "responses": {
                    "200": {
                        "description": "List of jobs",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Job"}}
                    },
                    "500": {"description": "Internal server error"}
                }
            },
            "post": {
                "description": "Process one or more stored input files asynchronously",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Create a job",
                "parameters": [
                    {
                        "description": "Objects to process",
                        "name": "job",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.JobRequest"}
                    }
                ],
                "responses": {
                    "202": {"description": "Job accepted"},
                    "400": {"description": "Invalid request payload"},
                    "503": {"description": "No storage configured"}
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "description": "Retrieve the status and statistics of a job",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get job",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Job details", "schema": {"$ref": "#/definitions/model.Job"}},
                    "400": {"description": "Invalid job ID"},
                    "404": {"description": "Job not found"}
                }
            }
        },
        "/jobs/{id}/errors": {
            "get": {
                "description": "Retrieve the file-level errors recorded for a job",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get job errors",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Job errors"},
                    "400": {"description": "Invalid job ID"},
                    "500": {"description": "Internal server error"}
                }
            }
        }
    },
    "definitions": {
        "handler.BatchRequest": {
            "type": "object",
            "properties": {
                "records": {"type": "array", "items": {"type": "object", "additionalProperties": true}}
            }
        },
        "handler.BatchResponse": {
            "type": "object",
            "properties": {
                "jobID": {"type": "string"},
                "valid": {"type": "array", "items": {"type": "object", "additionalProperties": true}},
                "errors": {"type": "array", "items": {"type": "object", "additionalProperties": true}},
                "valid_count": {"type": "integer"},
                "error_count": {"type": "integer"}
            }
        },
        "handler.JobRequest": {
            "type": "object",
            "properties": {
                "objects": {"type": "array", "items": {"$ref": "#/definitions/model.ObjectRef"}}
            }
        },
        "model.ObjectRef": {
            "type": "object",
            "properties": {
                "bucket": {"type": "string"},
                "key": {"type": "string"}
            }
        },
        "model.Outcome": {
            "type": "object",
            "properties": {
                "valid": {"type": "boolean"},
                "record": {"type": "object", "additionalProperties": true},
                "error": {"type": "string"}
            }
        },
        "model.Summary": {
            "type": "object",
            "properties": {
                "total_records": {"type": "integer"},
                "processed_records": {"type": "integer"},
                "error_records": {"type": "integer"},
                "input_files": {"type": "integer"},
                "failed_files": {"type": "integer"},
                "output_files": {"type": "array", "items": {"type": "string"}}
            }
        },
        "model.Job": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "source": {"type": "string"},
                "status": {"type": "string"},
                "stats": {"$ref": "#/definitions/model.Summary"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Insurance Data Pipeline API",
	Description:      "Validate, transform and batch-process insurance records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
