// Package docs 注册 swagger 文档，由 swag init 根据 handler 注释重新生成
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
        "/partners": {
            "get": {"tags": ["学伴"], "summary": "学伴列表（支持搜索与排序）", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "科目关键字", "name": "search", "in": "query"},
                    {"type": "string", "description": "expert 或 rating", "name": "sort", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["学伴"], "summary": "创建学伴档案", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/partners/top-rated": {
            "get": {"tags": ["学伴"], "summary": "高分学伴", "produces": ["application/json"],
                "parameters": [{"type": "integer", "default": 6, "description": "数量", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/partners/{id}": {
            "get": {"tags": ["学伴"], "summary": "学伴详情",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["学伴"], "summary": "更新学伴档案（仅创建者）",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["学伴"], "summary": "删除学伴档案（仅创建者）",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/requests": {
            "post": {"tags": ["请求"], "summary": "发送学伴请求", "consumes": ["application/json"],
                "responses": {"201": {"description": "Created"}, "400": {"description": "参数错误或重复请求"}, "401": {"description": "Unauthorized"}}}
        },
        "/requests/{email}": {
            "get": {"tags": ["请求"], "summary": "查询用户请求（含学伴详情）",
                "parameters": [{"type": "string", "name": "email", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/requests/{id}": {
            "put": {"tags": ["请求"], "summary": "更新请求状态或留言",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["请求"], "summary": "撤回请求",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/profile/{email}": {
            "get": {"tags": ["用户"], "summary": "用户资料",
                "parameters": [{"type": "string", "name": "email", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/admin/reconcile": {
            "post": {"tags": ["管理"], "summary": "修复 partnerCount",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/healthz": {
            "get": {"tags": ["系统"], "summary": "健康检查",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    }
}`

// SwaggerInfo 文档元信息
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Study Partner API",
	Description:      "学伴匹配服务：档案目录、学伴请求与 partnerCount 维护",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
