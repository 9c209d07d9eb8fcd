// Package api 嵌入 OpenAPI 文档
package api

import "embed"

// OpenAPIFS OpenAPI 文档
//
//go:embed openapi/*.yaml
var OpenAPIFS embed.FS

// OpenAPIFile 主文档路径
const OpenAPIFile = "openapi/house-rent.yaml"
