// Package server exposes the contact repository over HTTP for the server
// source mode.
package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/source"
	"github.com/pders01/lazyload/internal/storage"
)

const defaultMaxLimit = 200

// Handler serves contact pages from a repository.
type Handler struct {
	repo     *storage.Store
	maxLimit int
	log      paging.Logger
}

// NewHandler creates a handler. maxLimit caps the page size; zero uses 200.
func NewHandler(repo *storage.Store, maxLimit int, log paging.Logger) *Handler {
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	if log == nil {
		log = paging.NopLogger{}
	}
	return &Handler{repo: repo, maxLimit: maxLimit, log: log}
}

// ListContacts returns one page together with the filtered total.
func (h *Handler) ListContacts(c *gin.Context) {
	search := c.Query("search")
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}
	limit, err := queryInt(c, "limit", paging.DefaultPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}
	limit = min(max(limit, 1), h.maxLimit)

	total, err := h.repo.CountContacts(search)
	if err != nil {
		h.fail(c, "count contacts", err)
		return
	}
	contacts, err := h.repo.ListContacts(offset, limit, search)
	if err != nil {
		h.fail(c, "list contacts", err)
		return
	}

	items := make([]storage.Contact, len(contacts))
	for i, ct := range contacts {
		items[i] = *ct
	}
	c.JSON(http.StatusOK, source.PageResponse{Items: items, Total: total})
}

// CountContacts returns the number of contacts matching search.
func (h *Handler) CountContacts(c *gin.Context) {
	total, err := h.repo.CountContacts(c.Query("search"))
	if err != nil {
		h.fail(c, "count contacts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

// GetContact returns a single contact by id.
func (h *Handler) GetContact(c *gin.Context) {
	contact, err := h.repo.GetContact(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}
	if err != nil {
		h.fail(c, "get contact", err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.log.Error("request failed", paging.Fields{"op": op, "path": c.FullPath(), "error": err.Error()})
	c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
