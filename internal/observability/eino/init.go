package eino

import (
	"sync/atomic"

	einocb "github.com/cloudwego/eino/callbacks"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
)

var registered atomic.Bool

// Init 把模型调用的指标与追踪回调注册为全局 handler，只在第一次调用时生效
func Init() bool {
	if !registered.CompareAndSwap(false, true) {
		return false
	}
	einocb.AppendGlobalHandlers(newHandler())
	return true
}

func newHandler() einocb.Handler {
	return cbtemplate.NewHandlerHelper().
		ChatModel(newChatModelCallbackHandler()).
		Handler()
}
