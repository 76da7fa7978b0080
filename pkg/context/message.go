package context

import (
	"container/heap"
	"context"
	"slices"
	"strings"
)

// Message 是一轮对话的内容容器。
//
// 内容分为固定片段（永不修改）和可丢弃片段（按优先级压缩或删除）。
// 两类片段共享同一个递增序号，Render 总是按插入顺序拼接，
// 与压缩历史和堆内部顺序无关。
type Message struct {
	// prompt 是所属 Prompt（非拥有引用），用于调用压缩器
	prompt *Prompt

	pinned    []*PinnedFragment
	droppable droppableHeap
	nextSeq   int
}

// newMessage 创建属于 p 的空 Message。
func newMessage(p *Prompt) *Message {
	return &Message{prompt: p}
}

// AddPinned 追加一个固定片段并返回其句柄。
func (m *Message) AddPinned(text string) *PinnedFragment {
	f := &PinnedFragment{seq: m.nextSeq, text: text}
	m.nextSeq++
	m.pinned = append(m.pinned, f)
	return f
}

// AddDroppable 追加一个可丢弃片段并返回其句柄。
//
// importance 越大越晚被压缩；调用方通常传 0。
func (m *Message) AddDroppable(text string, importance int) *DroppableFragment {
	f := &DroppableFragment{
		importance: importance,
		seq:        m.nextSeq,
		text:       text,
	}
	m.nextSeq++
	heap.Push(&m.droppable, f)
	return f
}

// Pin 追加固定片段，返回 m 以便链式调用。
func (m *Message) Pin(text string) *Message {
	m.AddPinned(text)
	return m
}

// Add 追加可丢弃片段，返回 m 以便链式调用。
func (m *Message) Add(text string, importance int) *Message {
	m.AddDroppable(text, importance)
	return m
}

// Remove 按句柄身份删除片段。片段不属于 m 时返回 false。
func (m *Message) Remove(f Fragment) bool {
	switch f := f.(type) {
	case *PinnedFragment:
		i := slices.Index(m.pinned, f)
		if i < 0 {
			return false
		}
		m.pinned = slices.Delete(m.pinned, i, i+1)
		return true
	case *DroppableFragment:
		if f == nil || f.index < 0 || f.index >= len(m.droppable) || m.droppable[f.index] != f {
			return false
		}
		heap.Remove(&m.droppable, f.index)
		return true
	default:
		return false
	}
}

// ShrinkOne 执行一轮压缩。
//
// 选择 (shrinkCount, importance, seq) 最小的可丢弃片段：
// 压缩次数小于 MaxShrinkRounds 时用压缩器的输出替换其文本并递增计数，
// 否则永久删除该片段。没有可丢弃片段时返回 false。
// 压缩器出错时片段保持原样，错误原样返回。
func (m *Message) ShrinkOne(ctx context.Context) (bool, error) {
	if len(m.droppable) == 0 {
		return false, nil
	}

	f := m.droppable[0]
	if f.shrinkCount >= MaxShrinkRounds {
		heap.Remove(&m.droppable, 0)
		m.prompt.onEvict(ctx, f)
		return true, nil
	}

	text, err := m.prompt.compact(ctx, f.text)
	if err != nil {
		return false, err
	}

	f.text = text
	f.shrinkCount++
	heap.Fix(&m.droppable, f.index)
	m.prompt.onShrink(ctx, f)
	return true, nil
}

// Render 按插入顺序拼接所有存活片段的文本。
func (m *Message) Render() string {
	fragments := m.fragments()

	var sb strings.Builder
	for _, f := range fragments {
		sb.WriteString(f.Text())
	}
	return sb.String()
}

// Pinned 返回按插入顺序排列的固定片段。
func (m *Message) Pinned() []*PinnedFragment {
	return slices.Clone(m.pinned)
}

// Droppable 返回按插入顺序排列的可丢弃片段。
func (m *Message) Droppable() []*DroppableFragment {
	out := slices.Clone([]*DroppableFragment(m.droppable))
	slices.SortFunc(out, func(a, b *DroppableFragment) int { return a.seq - b.seq })
	return out
}

// Len 返回存活片段数量。
func (m *Message) Len() int {
	return len(m.pinned) + len(m.droppable)
}

// fragments 返回按序号排列的全部存活片段。
func (m *Message) fragments() []Fragment {
	out := make([]Fragment, 0, m.Len())
	for _, f := range m.pinned {
		out = append(out, f)
	}
	for _, f := range m.droppable {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b Fragment) int { return a.Seq() - b.Seq() })
	return out
}
