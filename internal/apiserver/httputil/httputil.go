// Package httputil HTTP 响应与请求体解析的公共函数
//
// 所有成功响应带 success:true，错误响应统一为 {success:false, message}，
// 状态码由 apperr.HTTPStatus 决定。
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"house-rent/internal/shared/apperr"
)

// MaxBodyBytes 请求体上限 1 MiB
const MaxBodyBytes = 1 << 20

// MsgInvalidJSON 请求体无法解析
const MsgInvalidJSON = "Invalid JSON in request body"

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteJSON 将数据以 JSON 格式写入 HTTP 响应
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[http] encode response error: %v", err)
	}
}

// WriteData 写入 {success:true, data}
func WriteData(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// WriteList 写入 {success:true, count, data}
func WriteList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

// WriteMessage 以指定状态码写入错误消息
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// WriteError 将业务错误映射为 HTTP 响应
//
// 非 *apperr.Error 视为内部错误：记录日志，对外只返回 "Server error"。
func WriteError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	msg := apperr.Message(err)
	if msg == "" {
		log.Printf("[http] internal error: %v", err)
		msg = "Server error"
	}
	WriteMessage(w, status, msg)
}

// DecodeJSON 解析请求体到 v，限制 1 MiB
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("Request body too large")
		}
		if errors.Is(err, io.EOF) {
			// 空请求体按空对象处理，由字段校验给出具体提示
			return nil
		}
		return apperr.Validation(MsgInvalidJSON)
	}
	return nil
}
