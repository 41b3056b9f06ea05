package repository

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Op 存储操作类型，用于故障注入
type Op string

const (
	OpGetAll   Op = "get_all"
	OpGetWhere Op = "get_where"
	OpAdd      Op = "add"
	OpCreate   Op = "create"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
)

type memoryCollection struct {
	docs  map[string]map[string]any
	order []string
}

// MemoryStore 进程内文档存储
// 写入的字段会先做一次 JSON 往返，与真实文档库的取值类型保持一致
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	failures    map[string]error
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
		failures:    make(map[string]error),
	}
}

// FailOn 让指定集合上的某类操作返回 err，err 为 nil 时取消
func (m *MemoryStore) FailOn(op Op, collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := string(op) + ":" + collection
	if err == nil {
		delete(m.failures, key)
		return
	}
	m.failures[key] = err
}

// Len 返回集合中的文档数量
func (m *MemoryStore) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.collections[collection]; ok {
		return len(c.order)
	}
	return 0
}

func (m *MemoryStore) failure(op Op, collection string) error {
	return m.failures[string(op)+":"+collection]
}

func (m *MemoryStore) collection(name string) *memoryCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]map[string]any)}
		m.collections[name] = c
	}
	return c
}

func (m *MemoryStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	return m.GetWhere(ctx, collection)
}

func (m *MemoryStore) GetWhere(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	op := OpGetWhere
	if len(filters) == 0 {
		op = OpGetAll
	}
	if err := m.failure(op, collection); err != nil {
		return nil, err
	}

	c, ok := m.collections[collection]
	if !ok {
		return []Document{}, nil
	}

	normalized := make([]Filter, 0, len(filters))
	for _, f := range filters {
		v, err := normalizeValue(f.Value)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, Filter{Field: f.Field, Value: v})
	}

	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		fields := c.docs[id]
		if !matches(fields, normalized) {
			continue
		}
		cp, err := normalizeFields(fields)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Fields: cp})
	}
	return docs, nil
}

func (m *MemoryStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpAdd, collection); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := m.insert(collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (m *MemoryStore) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpCreate, collection); err != nil {
		return err
	}
	if _, exists := m.collection(collection).docs[id]; exists {
		return ErrAlreadyExists
	}
	return m.insert(collection, id, fields)
}

func (m *MemoryStore) insert(collection, id string, fields map[string]any) error {
	cp, err := normalizeFields(fields)
	if err != nil {
		return err
	}
	c := m.collection(collection)
	c.docs[id] = cp
	c.order = append(c.order, id)
	return nil
}

func (m *MemoryStore) UpdateByID(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpUpdate, collection); err != nil {
		return err
	}

	current, ok := m.collection(collection).docs[id]
	if !ok {
		return ErrNotFound
	}
	patch, err := normalizeFields(fields)
	if err != nil {
		return err
	}
	for k, v := range patch {
		current[k] = v
	}
	return nil
}

func (m *MemoryStore) DeleteByID(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpDelete, collection); err != nil {
		return err
	}

	c := m.collection(collection)
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	filtered := c.order[:0]
	for _, item := range c.order {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	c.order = filtered
	return nil
}

func matches(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := lookup(fields, f.Field)
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

// lookup 按点号路径读取嵌套字段
func lookup(fields map[string]any, path string) (any, bool) {
	var current any = fields
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func normalizeFields(fields map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
