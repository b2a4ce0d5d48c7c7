package milvus

import (
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// CollectionEvents 活动向量集合
const CollectionEvents = "club_events"

// 标量字段最大字节数
const (
	maxIDLen          = 64
	maxNameLen        = 512
	maxShortLen       = 256
	maxDescriptionLen = 65535
)

// 输出字段
const (
	fieldID          = "id"
	fieldVector      = "vector"
	fieldName        = "name"
	fieldDomain      = "domain"
	fieldDate        = "date"
	fieldTime        = "time"
	fieldVenue       = "venue"
	fieldDescription = "description"
)

var outputFields = []string{fieldName, fieldDomain, fieldDate, fieldTime, fieldVenue, fieldDescription}

func varChar(name string, maxLen int) *entity.Field {
	return &entity.Field{
		Name:       name,
		DataType:   entity.FieldTypeVarChar,
		TypeParams: map[string]string{"max_length": strconv.Itoa(maxLen)},
	}
}

// EventsSchema 活动集合 Schema，dim 与嵌入维度一致
func EventsSchema(dim int) *entity.Schema {
	id := varChar(fieldID, maxIDLen)
	id.PrimaryKey = true

	return &entity.Schema{
		CollectionName: CollectionEvents,
		Description:    "Club event embeddings for semantic lookup",
		Fields: []*entity.Field{
			id,
			{
				Name:       fieldVector,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(dim)},
			},
			varChar(fieldName, maxNameLen),
			varChar(fieldDomain, maxShortLen),
			varChar(fieldDate, 32),
			varChar(fieldTime, 64),
			varChar(fieldVenue, maxShortLen),
			varChar(fieldDescription, maxDescriptionLen),
		},
	}
}

// EventRecord 写入 Milvus 的活动向量
type EventRecord struct {
	ID          string
	Vector      []float32
	Name        string
	Domain      string
	Date        string
	Time        string
	Venue       string
	Description string
}

// clip 按字节截断且不破坏 UTF-8 字符
func clip(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
