// Package docs registers the Swagger document served under /swagger/.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/contests": {
            "post": {
                "summary": "Create a contest",
                "tags": [
                    "contests"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "get": {
                "summary": "List contest cards",
                "tags": [
                    "contests"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/contests/{contest_id}": {
            "get": {
                "summary": "Contest detail (X-Contest-Password for protected contests)",
                "tags": [
                    "contests"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "patch": {
                "summary": "Update a contest",
                "tags": [
                    "contests"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "delete": {
                "summary": "Delete a contest",
                "tags": [
                    "contests"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/contests/{contest_id}/transitions": {
            "post": {
                "summary": "Move a contest to another status",
                "tags": [
                    "contests"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/contests/{contest_id}/history": {
            "get": {
                "summary": "Status history",
                "tags": [
                    "contests"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/contests/{contest_id}/submissions": {
            "post": {
                "summary": "Submit a text",
                "tags": [
                    "submissions"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "get": {
                "summary": "List submissions, masked by status",
                "tags": [
                    "submissions"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/contests/{contest_id}/submissions/{submission_id}": {
            "delete": {
                "summary": "Withdraw a submission",
                "tags": [
                    "submissions"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/contests/{contest_id}/judges": {
            "post": {
                "summary": "Assign a judge",
                "tags": [
                    "judges"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "get": {
                "summary": "List judges",
                "tags": [
                    "judges"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/contests/{contest_id}/judges/{judge_key}": {
            "delete": {
                "summary": "Unassign a judge",
                "tags": [
                    "judges"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/contests/{contest_id}/votes": {
            "post": {
                "summary": "Cast or replace a vote set",
                "tags": [
                    "voting"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "get": {
                "summary": "Read a vote set",
                "tags": [
                    "voting"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/contests/{contest_id}/ranking": {
            "get": {
                "summary": "Final or live ranking",
                "tags": [
                    "voting"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/contests/{contest_id}/closure": {
            "post": {
                "summary": "Re-run the closure check",
                "tags": [
                    "voting"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/internal/texts/{text_id}/deleted": {
            "post": {
                "summary": "Resolve submissions of a deleted text",
                "tags": [
                    "internal"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/internal/contests/sweep": {
            "post": {
                "summary": "Move expired open contests to evaluation",
                "tags": [
                    "internal"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Inkwell contest judging API",
	Description:      "Contests, submissions, judge assignments, vote sets and rankings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
