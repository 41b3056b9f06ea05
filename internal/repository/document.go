package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRecord 文档表，所有集合共用一张表
type DocumentRecord struct {
	Collection string         `gorm:"primaryKey;size:64"`
	ID         string         `gorm:"primaryKey;size:64"`
	Data       datatypes.JSON `gorm:"type:json"`
	CreatedAt  time.Time      `gorm:"index"`
	UpdatedAt  time.Time
}

func (DocumentRecord) TableName() string {
	return "documents"
}

// GormStore 基于 GORM 的文档存储
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetAll 读取集合内全部文档（按创建时间升序）
func (s *GormStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	var records []DocumentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("读取集合 %s 失败: %w", collection, err)
	}
	return toDocuments(records)
}

// GetWhere 按 JSON 字段等值过滤
func (s *GormStore) GetWhere(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	query := s.db.WithContext(ctx).Where("collection = ?", collection)
	for _, f := range filters {
		query = query.Where(datatypes.JSONQuery("data").Equals(f.Value, strings.Split(f.Field, ".")...))
	}

	var records []DocumentRecord
	if err := query.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询集合 %s 失败: %w", collection, err)
	}
	return toDocuments(records)
}

// Add 新增文档
func (s *GormStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Create(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// Create 以指定 ID 新增文档，冲突时不覆盖
func (s *GormStore) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("序列化文档失败: %w", err)
	}
	record := &DocumentRecord{
		Collection: collection,
		ID:         id,
		Data:       data,
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(record)
	if result.Error != nil {
		return fmt.Errorf("写入集合 %s 失败: %w", collection, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// UpdateByID 合并更新顶层字段
func (s *GormStore) UpdateByID(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record DocumentRecord
		err := tx.Where("collection = ? AND id = ?", collection, id).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		current := map[string]any{}
		if len(record.Data) > 0 {
			if err := json.Unmarshal(record.Data, &current); err != nil {
				return fmt.Errorf("解析文档失败: %w", err)
			}
		}
		for k, v := range fields {
			current[k] = v
		}
		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("序列化文档失败: %w", err)
		}

		return tx.Model(&DocumentRecord{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]interface{}{
				"data":       datatypes.JSON(data),
				"updated_at": time.Now(),
			}).Error
	})
}

// DeleteByID 删除文档，不存在也返回成功
func (s *GormStore) DeleteByID(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&DocumentRecord{}).Error
	if err != nil {
		return fmt.Errorf("删除文档 %s/%s 失败: %w", collection, id, err)
	}
	return nil
}

func toDocuments(records []DocumentRecord) ([]Document, error) {
	docs := make([]Document, 0, len(records))
	for _, r := range records {
		fields := map[string]any{}
		if len(r.Data) > 0 {
			if err := json.Unmarshal(r.Data, &fields); err != nil {
				return nil, fmt.Errorf("解析文档 %s/%s 失败: %w", r.Collection, r.ID, err)
			}
		}
		docs = append(docs, Document{ID: r.ID, Fields: fields})
	}
	return docs, nil
}
