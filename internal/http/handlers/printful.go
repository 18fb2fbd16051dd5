package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type printfulProxyRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type printfulProxyData struct {
	ProductID int64  `json:"productId"`
	TaskKey   string `json:"taskKey"`
}

// PrintfulProxy is the action-discriminated pass-through to the print
// provider. The upstream's JSON body and status code travel back
// unmodified; only transport failures are rewritten.
func (a *App) PrintfulProxy(w http.ResponseWriter, r *http.Request) {
	var req printfulProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}
	var data printfulProxyData
	if len(req.Data) > 0 {
		if err := json.Unmarshal(req.Data, &data); err != nil {
			a.error(w, http.StatusBadRequest, "validation", "invalid data payload")
			return
		}
	}

	ctx := r.Context()
	var (
		body   []byte
		status int
		err    error
	)
	switch req.Action {
	case "getCatalogItems":
		body, status, err = a.Printful.RawGet(ctx, "/products")
	case "getProductDetails":
		if data.ProductID == 0 {
			a.error(w, http.StatusBadRequest, "validation", "productId required")
			return
		}
		body, status, err = a.Printful.RawGet(ctx, fmt.Sprintf("/products/%d", data.ProductID))
	case "getPrintfiles":
		if data.ProductID == 0 {
			a.error(w, http.StatusBadRequest, "validation", "productId required")
			return
		}
		body, status, err = a.Printful.RawGet(ctx, fmt.Sprintf("/mockup-generator/printfiles/%d", data.ProductID))
	case "generateMockup":
		if data.ProductID == 0 {
			a.error(w, http.StatusBadRequest, "validation", "productId required")
			return
		}
		body, status, err = a.Printful.RawPost(ctx, fmt.Sprintf("/mockup-generator/create-task/%d", data.ProductID), req.Data)
	case "getMockupResult":
		if data.TaskKey == "" {
			a.error(w, http.StatusBadRequest, "validation", "taskKey required")
			return
		}
		body, status, err = a.Printful.RawGet(ctx, "/mockup-generator/task?task_key="+url.QueryEscape(data.TaskKey))
	case "createOrder":
		body, status, err = a.Printful.RawPost(ctx, "/orders", req.Data)
	default:
		a.error(w, http.StatusBadRequest, "validation", "unknown action "+req.Action)
		return
	}

	if err != nil {
		a.Logger.Error().Err(err).Str("action", req.Action).Msg("print provider proxy failed")
		a.error(w, http.StatusBadGateway, "upstream", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
