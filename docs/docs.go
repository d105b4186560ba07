// Package docs 注册 Swagger 文档
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
        "/api/v1/ai-items/webhook": {
            "post": {
                "description": "使用用户专属 Webhook Key 认证，解析短信并创建待审核项。LOW 置信度的记录进入 NEEDS_MANUAL",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["AI 记账"],
                "summary": "短信 Webhook",
                "parameters": [
                    {"description": "短信内容", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.WebhookRequest"}}
                ],
                "responses": {
                    "200": {"description": "解析成功", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "请求参数错误", "schema": {"$ref": "#/definitions/api.Response"}},
                    "401": {"description": "无效的 Webhook Key 或用户不存在", "schema": {"$ref": "#/definitions/api.Response"}},
                    "502": {"description": "AI 解析服务调用失败", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/ai-items": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["AI 记账"],
                "summary": "获取待审核列表",
                "parameters": [
                    {"enum": ["PENDING", "NEEDS_MANUAL", "CONFIRMED", "REJECTED"], "type": "string", "description": "状态", "name": "status", "in": "query"},
                    {"type": "integer", "default": 1, "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "每页数量", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        },
        "/api/v1/ai-items/statistics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["AI 记账"],
                "summary": "获取 AI 解析统计数据",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        },
        "/api/v1/ai-items/batch-confirm": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "每项独立确认，单项失败不影响其他项",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["AI 记账"],
                "summary": "批量确认入账",
                "parameters": [
                    {"description": "待确认列表", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.BatchConfirmRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "参数错误", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/ai-items/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["AI 记账"],
                "summary": "获取单个待审核项",
                "parameters": [{"type": "string", "description": "待审核项 ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "403": {"description": "无权访问", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "不存在", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "仅 PENDING / NEEDS_MANUAL 状态可修改，不改变状态与置信度",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["AI 记账"],
                "summary": "更新待审核项",
                "parameters": [
                    {"type": "string", "description": "待审核项 ID", "name": "id", "in": "path", "required": true},
                    {"description": "修改内容", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.UpdateAiItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "409": {"description": "状态不允许修改", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["AI 记账"],
                "summary": "删除待审核项（标记为拒绝）",
                "parameters": [{"type": "string", "description": "待审核项 ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "已删除", "schema": {"$ref": "#/definitions/api.Response"}},
                    "409": {"description": "已确认或已拒绝", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/ai-items/{id}/confirm": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "在同一事务中创建交易记录并将待审核项置为 CONFIRMED",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["AI 记账"],
                "summary": "确认入账",
                "parameters": [
                    {"type": "string", "description": "待审核项 ID", "name": "id", "in": "path", "required": true},
                    {"description": "最终值", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.ConfirmAiItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "参数错误", "schema": {"$ref": "#/definitions/api.Response"}},
                    "409": {"description": "已确认或已拒绝", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["认证"],
                "summary": "用户注册",
                "parameters": [{"description": "注册信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.RegisterRequest"}}],
                "responses": {
                    "200": {"description": "注册成功", "schema": {"$ref": "#/definitions/api.Response"}},
                    "409": {"description": "用户名已存在", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["认证"],
                "summary": "用户登录",
                "parameters": [{"description": "登录信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.LoginRequest"}}],
                "responses": {
                    "200": {"description": "登录成功", "schema": {"$ref": "#/definitions/api.Response"}},
                    "401": {"description": "用户名或密码错误", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/auth/webhook-key": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["认证"],
                "summary": "获取 Webhook Key",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        },
        "/api/v1/auth/webhook-key/regenerate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["认证"],
                "summary": "重新生成 Webhook Key",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        },
        "/api/v1/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["分类"],
                "summary": "获取分类列表",
                "parameters": [{"enum": ["EXPENSE", "INCOME"], "type": "string", "description": "交易类型", "name": "type", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        }
    },
    "definitions": {
        "api.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        },
        "api.WebhookRequest": {
            "type": "object",
            "required": ["rawText", "webhookKey"],
            "properties": {
                "rawText": {"type": "string", "example": "【招商银行】您尾号8888的账户于02月27日14:30支出128.50元，商户名称:美团外卖。"},
                "userId": {"type": "string"},
                "ownerId": {"type": "string"},
                "webhookKey": {"type": "string"}
            }
        },
        "api.ConfirmAiItemRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "enum": ["EXPENSE", "INCOME"]},
                "amount": {"type": "number"},
                "description": {"type": "string"},
                "date": {"type": "string", "example": "2026-02-27"},
                "categoryId": {"type": "string"}
            }
        },
        "api.BatchConfirmRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {"type": "string"},
                            "type": {"type": "string", "enum": ["EXPENSE", "INCOME"]},
                            "amount": {"type": "number"},
                            "description": {"type": "string"},
                            "date": {"type": "string"},
                            "categoryId": {"type": "string"}
                        }
                    }
                }
            }
        },
        "api.UpdateAiItemRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["EXPENSE", "INCOME"]},
                "amount": {"type": "number"},
                "description": {"type": "string"},
                "date": {"type": "string"},
                "categoryId": {"type": "string"}
            }
        },
        "api.RegisterRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "maxLength": 50, "minLength": 6},
                "username": {"type": "string", "maxLength": 50, "minLength": 3}
            }
        },
        "api.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
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
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "短信记账 API",
	Description:      "银行短信 -> AI 解析 -> 人工审核 -> 入账",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
