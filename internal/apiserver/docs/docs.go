// Package docs 提供 OpenAPI 文档
//
// 启动时加载并校验嵌入的文档，校验失败直接返回错误，避免发布损坏的文档。
package docs

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"house-rent/api"

	"github.com/getkin/kin-openapi/openapi3"
)

// Handler OpenAPI 文档处理器
type Handler struct {
	doc *openapi3.T
	raw []byte
}

// Load 读取并校验嵌入的 OpenAPI 文档
func Load(ctx context.Context) (*Handler, error) {
	raw, err := api.OpenAPIFS.ReadFile(api.OpenAPIFile)
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return &Handler{doc: doc, raw: raw}, nil
}

// Version 文档版本
func (h *Handler) Version() string {
	return h.doc.Info.Version
}

// Operations 文档中声明的全部 "METHOD /path"，按字典序
func (h *Handler) Operations() []string {
	var ops []string
	for path, item := range h.doc.Paths.Map() {
		for method := range item.Operations() {
			ops = append(ops, method+" "+path)
		}
	}
	sort.Strings(ops)
	return ops
}

// RegisterRoutes 注册文档路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/openapi.yaml", h.Serve)
}

// Serve 返回原始 YAML 文档
//
// 路由: GET /api/openapi.yaml
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(h.raw)
}
