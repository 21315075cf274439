// Package docs is generated by swaggo/swag from the annotations in
// cmd/server and internal/interfaces/http/handler. Regenerate with:
//
//	swag init -g cmd/server/main.go -o docs --v3.1
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "contact": {
            "name": "API Support",
            "email": "support@wms.example.co.ke"
        },
        "version": "{{.Version}}"
    },
    "servers": [
        {"url": "//{{.Host}}{{.BasePath}}"}
    ],
    "paths": {},
    "components": {
        "securitySchemes": {
            "BearerAuth": {
                "type": "apiKey",
                "description": "Bearer token authentication. Format: \"Bearer {token}\"",
                "name": "Authorization",
                "in": "header"
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
	Title:            "WMS Backend API",
	Description:      "Parcel dispatch, branch ledger and daily reporting API for the warehouse network",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
