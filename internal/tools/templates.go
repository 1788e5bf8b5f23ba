package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rahul/launchpad/internal/store"
)

// MinCacheBytes is the smallest cache that still gets ristretto counters.
const MinCacheBytes = 100

// TemplateCache is an in-process cache of template listings keyed by category.
type TemplateCache struct {
	c   *ristretto.Cache[string, []byte]
	ttl time.Duration
}

// NewTemplateCache creates a ristretto-backed cache. maxCostBytes bounds the
// total size of cached listings and must be at least MinCacheBytes.
func NewTemplateCache(maxCostBytes int64, ttl time.Duration) (*TemplateCache, error) {
	if maxCostBytes < MinCacheBytes {
		return nil, fmt.Errorf("template cache needs at least %d bytes, got %d", MinCacheBytes, maxCostBytes)
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &TemplateCache{c: c, ttl: ttl}, nil
}

func (tc *TemplateCache) get(category string) ([]store.Template, bool) {
	if tc == nil || tc.ttl <= 0 {
		return nil, false
	}
	data, found := tc.c.Get("templates:" + category)
	if !found {
		return nil, false
	}
	var templates []store.Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, false
	}
	return templates, true
}

func (tc *TemplateCache) set(category string, templates []store.Template) {
	if tc == nil || tc.ttl <= 0 {
		return
	}
	data, err := json.Marshal(templates)
	if err != nil {
		return
	}
	tc.c.SetWithTTL("templates:"+category, data, int64(len(data)), tc.ttl)
}

func (tc *TemplateCache) Close() {
	if tc != nil {
		tc.c.Close()
	}
}

type TemplatesTool struct {
	Store Store
	Cache *TemplateCache
}

func NewTemplatesTool(s Store, cache *TemplateCache) *TemplatesTool {
	return &TemplatesTool{Store: s, Cache: cache}
}

func (t *TemplatesTool) Name() string {
	return GetTaskTemplates
}

func (t *TemplatesTool) Description() string {
	return "List the task templates available for a new business, optionally filtered by category."
}

func (t *TemplatesTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{
				"type":        "string",
				"description": "Only return templates in this category (e.g. 'legal', 'financial')",
			},
		},
	}
}

func (t *TemplatesTool) Execute(ctx context.Context, input string) (string, error) {
	var args TemplatesInput
	if err := decode(input, &args); err != nil {
		return "", err
	}

	if cached, ok := t.Cache.get(args.Category); ok {
		return success(TemplatesOutput{Envelope: Envelope{Success: true}, Templates: cached})
	}

	templates, err := t.Store.ListTemplates(ctx, args.Category)
	if err != nil {
		log.Printf("[tools] %s failed: %v", t.Name(), err)
		return failure("failed to fetch templates: %v", err)
	}
	if templates == nil {
		templates = []store.Template{}
	}
	t.Cache.set(args.Category, templates)

	return success(TemplatesOutput{Envelope: Envelope{Success: true}, Templates: templates})
}
