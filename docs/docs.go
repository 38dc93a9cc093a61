// Package docs registra a documentação OpenAPI servida em /swagger/*.
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
        "/v1/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Registra um novo usuário",
                "parameters": [{"in": "body", "name": "registration", "required": true, "schema": {"$ref": "#/definitions/domain.UserRegistration"}}],
                "responses": {
                    "201": {"description": "Usuário criado com sucesso", "schema": {"$ref": "#/definitions/domain.AuthResponse"}},
                    "400": {"description": "Payload inválido", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "409": {"description": "Email já cadastrado", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Autentica um usuário e retorna um JWT",
                "parameters": [{"in": "body", "name": "login", "required": true, "schema": {"$ref": "#/definitions/domain.LoginRequest"}}],
                "responses": {
                    "200": {"description": "Token JWT emitido", "schema": {"$ref": "#/definitions/domain.AuthResponse"}},
                    "401": {"description": "Credenciais inválidas", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/request-otp": {
            "post": {
                "tags": ["auth"],
                "summary": "Solicita um código de redefinição de senha",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Usuário não encontrado", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/reset-password": {
            "post": {
                "tags": ["auth"],
                "summary": "Redefine a senha com o código OTP",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Código inválido ou expirado", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/v1/operations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["operations"],
                "summary": "Lista operações",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["operations"],
                "summary": "Cria uma operação em rascunho",
                "responses": {
                    "201": {"description": "Criada"},
                    "400": {"description": "Payload inválido", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Produto ou localização desconhecidos", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/v1/operations/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["operations"],
                "summary": "Busca uma operação com suas linhas",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Operação não encontrada", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/v1/operations/{id}/validate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["stock"],
                "summary": "Valida uma operação em rascunho",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Operação não encontrada", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "409": {"description": "Estoque insuficiente", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/v1/stock/initial": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["stock"],
                "summary": "Registra estoque inicial",
                "responses": {"201": {"description": "Criado"}, "409": {"description": "Produto já tem estoque ou movimentos"}}
            }
        },
        "/v1/stock/{productID}/{locationID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["stock"],
                "summary": "Consulta o nível de estoque",
                "parameters": [
                    {"type": "string", "name": "productID", "in": "path", "required": true},
                    {"type": "string", "name": "locationID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/movements": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["stock"],
                "summary": "Lista o livro-razão de movimentos",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/dashboard/kpis": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["dashboard"],
                "summary": "Indicadores do painel",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/products": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["products"],
                "summary": "Lista produtos",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["products"],
                "summary": "Cadastra um produto",
                "responses": {
                    "201": {"description": "Criado"},
                    "409": {"description": "SKU já cadastrado", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/v1/products/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["products"],
                "summary": "Busca um produto",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/categories": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["products"], "summary": "Lista categorias", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/warehouses": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["warehouses"], "summary": "Lista armazéns ativos", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/locations": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["warehouses"], "summary": "Lista localizações", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/locations/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["warehouses"],
                "summary": "Busca uma localização",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "domain.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "category": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "domain.UserRegistration": {
            "type": "object",
            "required": ["email", "password", "name"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "domain.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "domain.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo guarda as informações exportadas da API.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "StockMaster API",
	Description:      "Controle de estoque multi-armazém com livro-razão de movimentos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
