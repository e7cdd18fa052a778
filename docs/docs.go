// Package docs registers the swagger document served at /swagger.
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
                "summary": "Health check",
                "tags": [
                    "system"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/fx/rates": {
            "get": {
                "summary": "Get USD FX rates",
                "tags": [
                    "fx"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/cash/ladder": {
            "post": {
                "summary": "Build the effective cash ladder",
                "tags": [
                    "cash"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/cash/projection": {
            "post": {
                "summary": "Project cash at a horizon",
                "tags": [
                    "cash"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/cash/investable": {
            "post": {
                "summary": "Compute investable cash",
                "tags": [
                    "cash"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/cash/spot-to-base": {
            "post": {
                "summary": "Convert foreign cash to USD",
                "tags": [
                    "cash"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/portfolio/derive": {
            "post": {
                "summary": "Recompute position values and weights",
                "tags": [
                    "cockpit"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/reconciliations": {
            "post": {
                "summary": "Run a reconciliation",
                "tags": [
                    "reconciliation"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/reconciliations/upload": {
            "post": {
                "summary": "Run a reconciliation from a custodian CSV",
                "tags": [
                    "reconciliation"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/reconciliations/{id}": {
            "get": {
                "summary": "Get a reconciliation run",
                "tags": [
                    "reconciliation"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/reconciliations/{id}/audit": {
            "get": {
                "summary": "Get the audit trail of a run",
                "tags": [
                    "reconciliation"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/reconciliations/{id}/breaks/{breakId}/owner": {
            "put": {
                "summary": "Assign a break owner",
                "tags": [
                    "breaks"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/reconciliations/{id}/breaks/{breakId}/status": {
            "put": {
                "summary": "Move a break along its workflow",
                "tags": [
                    "breaks"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/reconciliations/{id}/breaks/{breakId}/resolution": {
            "put": {
                "summary": "Resolve a break",
                "tags": [
                    "breaks"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/reconciliations/{id}/breaks/{breakId}/notes": {
            "put": {
                "summary": "Update break notes",
                "tags": [
                    "breaks"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/reconciliations/{id}/breaks/{breakId}/cause": {
            "put": {
                "summary": "Override the cause of a break",
                "tags": [
                    "breaks"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/reconciliations/{id}/push": {
            "post": {
                "summary": "Push accepted custodian values to the book",
                "tags": [
                    "reconciliation"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/rebalance": {
            "post": {
                "summary": "Preview a rebalance",
                "tags": [
                    "rebalance"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/rebalance/baskets": {
            "post": {
                "summary": "Confirm a rebalance into baskets",
                "tags": [
                    "baskets"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/baskets/route": {
            "post": {
                "summary": "Route pending baskets",
                "tags": [
                    "baskets"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/baskets/cancel": {
            "post": {
                "summary": "Cancel all baskets",
                "tags": [
                    "baskets"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/baskets/do-not-trade": {
            "post": {
                "summary": "Toggle do-not-trade on a pending order",
                "tags": [
                    "baskets"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/nav/shadow-card": {
            "post": {
                "summary": "Build the shadow NAV card",
                "tags": [
                    "nav"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/cockpit": {
            "post": {
                "summary": "Compute the cockpit dashboard",
                "tags": [
                    "cockpit"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PMS Cockpit API",
	Description:      "Cash ladder, break reconciliation, rebalance allocation and NAV bridge for a portfolio operations desk.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
