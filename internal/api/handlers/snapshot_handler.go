package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pantera/orderprep/backend-go/internal/domain"
	"github.com/pantera/orderprep/backend-go/internal/export"
	"github.com/pantera/orderprep/backend-go/internal/service"
)

type SnapshotHandler struct {
	service *service.SnapshotService
}

func NewSnapshotHandler(service *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{service: service}
}

// itemView is one keyed row of the items response.
type itemView struct {
	Key string `json:"key"`
	*domain.Item
}

// parseSKUs accepts both repeated params and a comma-separated list:
//
//	?skus=A1&skus=B2
//	?skus=A1,B2
func parseSKUs(c *gin.Context) []string {
	var skus []string
	for _, v := range c.QueryArray("skus") {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				skus = append(skus, part)
			}
		}
	}
	return skus
}

// GetItems returns the current aggregate, optionally restricted to a SKU
// list.
func (h *SnapshotHandler) GetItems(c *gin.Context) {
	snap := h.service.Snapshot()

	var filter map[string]struct{}
	if skus := parseSKUs(c); len(skus) > 0 {
		filter = make(map[string]struct{}, len(skus))
		for _, s := range skus {
			filter[s] = struct{}{}
		}
	}

	items := make([]itemView, 0, len(snap.Items))
	for _, key := range snap.Keys() {
		it := snap.Items[key]
		if filter != nil {
			if _, ok := filter[strings.TrimSpace(it.SKU)]; !ok {
				continue
			}
		}
		items = append(items, itemView{Key: key, Item: it})
	}

	c.JSON(http.StatusOK, gin.H{
		"items":         items,
		"months":        snap.Months,
		"current_month": snap.CurrentMonth,
		"stats":         snap.Stats,
	})
}

// GetStatus returns the health counters for the last load cycle.
func (h *SnapshotHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Snapshot().Stats)
}

// Reload runs a fresh load cycle and returns its stats. A reload does not
// cancel a cycle already in flight.
func (h *SnapshotHandler) Reload(c *gin.Context) {
	snap := h.service.Load(c.Request.Context())
	c.JSON(http.StatusOK, snap.Stats)
}

// Export streams the flat CSV of the current snapshot.
func (h *SnapshotHandler) Export(c *gin.Context) {
	snap := h.service.Snapshot()

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, snap, export.Options{SKUs: parseSKUs(c)}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("order_prep_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

type orderQtyRequest struct {
	Qty float64 `json:"qty"`
}

// SetOrderQty records the user-entered order quantity for one item key.
func (h *SnapshotHandler) SetOrderQty(c *gin.Context) {
	key := c.Param("key")

	var req orderQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.SetOrderQty(c.Request.Context(), key, req.Qty); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "qty": req.Qty})
}
