// Package waggle holds the Swagger description of the authentication API.
// It is registered with swag on import and served by http-swagger.
package waggle

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
        "/api/v1/auth/login": {
            "post": {
                "description": "Checks username and password and starts a session, superseding any previous session of the same user.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/authsdk.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/authsdk.APIResponse-authsdk_TokenResponse"},
                        "headers": {"Set-Cookie": {"type": "string", "description": "access_token, refresh_token"}}
                    },
                    "400": {"description": "INVALID_REQUEST", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "401": {"description": "INVALID_CREDENTIALS", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "429": {"description": "TOO_MANY_REQUESTS", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "description": "Exchanges the refresh_token cookie for a new credential pair. The presented refresh credential stops working.",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Rotate the session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.APIResponse-authsdk_TokenResponse"}},
                    "401": {"description": "REFRESH_TOKEN_INVALID, TOKEN_EXPIRED, REFRESH_TOKEN_TYPE_INVALID, REFRESH_TOKEN_NOT_FOUND, REFRESH_TOKEN_MISMATCH, USER_NOT_FOUND", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "429": {"description": "TOO_MANY_REQUESTS", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Ends the caller's session and expires both credential cookies. Logging out twice is not an error.",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log out",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.APIResponse-any"}},
                    "401": {"description": "UNAUTHORIZED", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/api/v1/auth/username-check": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Check username availability",
                "parameters": [
                    {"type": "string", "description": "Username to check", "name": "username", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.APIResponse-authsdk_UsernameCheckResponse"}},
                    "400": {"description": "VALIDATION_FAILED", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/api/v1/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the identity carried by the caller's access credential.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.APIResponse-authsdk_UserResponse"}},
                    "401": {"description": "UNAUTHORIZED", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/api/v1/bootstrap": {
            "post": {
                "description": "Creates the first ROLE_ADMIN user. Only available when a bootstrap token is configured, and only while the directory is empty.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bootstrap"],
                "summary": "Bootstrap the authentication system",
                "parameters": [
                    {"type": "string", "description": "Bootstrap token", "name": "X-Bootstrap-Token", "in": "header", "required": true},
                    {"description": "First administrator", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.BootstrapRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/authsdk.APIResponse-authsdk_BootstrapResponse"}},
                    "400": {"description": "INVALID_REQUEST, VALIDATION_FAILED", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "401": {"description": "BOOTSTRAP_UNAUTHORIZED", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "404": {"description": "BOOTSTRAP_DISABLED", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "409": {"description": "BOOTSTRAP_ALREADY_COMPLETED", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/.well-known/jwks.json": {
            "get": {
                "description": "Returns the JSON Web Key Set used to verify JWTs. Empty when credentials are signed with a shared secret.",
                "produces": ["application/json"],
                "tags": ["well-known"],
                "summary": "Get JWKS",
                "responses": {
                    "200": {"description": "The JSON Web Key Set", "schema": {"$ref": "#/definitions/jwtx.JWKS"}}
                }
            }
        },
        "/livez": {
            "get": {
                "description": "Always 200 while the process is serving.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Pings the principal directory and the credential store and checks that a signing key is loaded.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}},
                    "503": {"description": "one or more checks failed", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "authsdk.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "authsdk.APIResponse-any": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "data": {},
                "message": {"type": "string"}
            }
        },
        "authsdk.APIResponse-authsdk_TokenResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "data": {"$ref": "#/definitions/authsdk.TokenResponse"},
                "message": {"type": "string"}
            }
        },
        "authsdk.APIResponse-authsdk_UserResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "data": {"$ref": "#/definitions/authsdk.UserResponse"},
                "message": {"type": "string"}
            }
        },
        "authsdk.APIResponse-authsdk_UsernameCheckResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "data": {"$ref": "#/definitions/authsdk.UsernameCheckResponse"},
                "message": {"type": "string"}
            }
        },
        "authsdk.APIResponse-authsdk_BootstrapResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "data": {"$ref": "#/definitions/authsdk.BootstrapResponse"},
                "message": {"type": "string"}
            }
        },
        "authsdk.BootstrapRequest": {
            "type": "object",
            "properties": {
                "nickname": {"type": "string"},
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "authsdk.BootstrapResponse": {
            "type": "object",
            "properties": {
                "role": {"type": "string"},
                "user_id": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "authsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "authsdk.LoginRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "authsdk.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_at": {"type": "string"},
                "expires_in": {"type": "integer"},
                "token_type": {"type": "string"}
            }
        },
        "authsdk.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "nickname": {"type": "string"},
                "role": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "authsdk.UsernameCheckResponse": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"},
                "username": {"type": "string"}
            }
        },
        "jwtx.JWK": {
            "type": "object",
            "properties": {
                "alg": {"type": "string"},
                "crv": {"type": "string"},
                "kid": {"type": "string"},
                "kty": {"type": "string"},
                "use": {"type": "string"},
                "x": {"type": "string"},
                "y": {"type": "string"}
            }
        },
        "jwtx.JWKS": {
            "type": "object",
            "properties": {
                "keys": {"type": "array", "items": {"$ref": "#/definitions/jwtx.JWK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT access token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Waggle Authentication API",
	Description:      "Session authentication for waggle: username/password login, refresh credential rotation and logout.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
