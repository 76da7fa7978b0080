// Package context 在固定的 Token 预算内组装并提交 LLM 请求。
//
// 一个 Prompt 持有有序的 (角色, Message) 列表。每个 Message 由两类片段组成：
//
//   - 固定片段：原样保留，永不压缩
//   - 可丢弃片段：超出预算时按 (压缩次数, 重要度, 序号) 从小到大
//     依次交给 Compactor 压缩，压缩 MaxShrinkRounds 次后再次被选中时删除
//
// 渲染总是按插入顺序拼接片段，与压缩历史无关。
//
// # 基本用法
//
//	client := llm.NewClient(provider)
//	p := context.NewPrompt(client, context.WithTokenLimit(4000))
//
//	p.Add(message.RoleSystem).Pin("你是一个有帮助的助手。")
//	user := p.Add(message.RoleUser)
//	user.Pin("请总结以下文档：\n")
//	user.AddDroppable(document, 0)
//
//	reply, err := p.Dispatch(ctx)
//	if errors.Is(err, errors.ErrBudgetExhausted) {
//	    // 固定内容本身已超出预算
//	}
//
// # 压缩策略
//
// 默认的 Summarizer 通过同一个 Client 发起独立的摘要请求。
// TruncateCompactor 不调用模型，直接截断；CachedCompactor 可以包装
// 任意 Compactor，把摘要结果保存到 store.SummaryCache 中。
//
// 多个消息之间没有全局优先级：Dispatch 每一轮按列表顺序让每个消息
// 各压缩一次，总量不超过预算时立即停止。
package context
