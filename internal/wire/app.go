package wire

import (
	"club-knowledge-api/internal/application/ingestion"
	"club-knowledge-api/internal/application/query"
	"club-knowledge-api/internal/infrastructure/persistence/milvus"
	"club-knowledge-api/internal/infrastructure/persistence/postgres"
)

// Agent 命令行问答与入库
type Agent struct {
	Answerer query.Answerer
	Ingestor *ingestion.Service
}

// Bootstrap 初始化数据库所需依赖，Milvus 可为 nil
type Bootstrap struct {
	PgClient   *postgres.Client
	UserRepo   *postgres.UserRepository
	MilvusRepo *milvus.Repository
}
