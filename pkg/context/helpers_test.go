package context_test

import (
	"context"
	"strings"
	"sync"

	agentctx "github.com/easyops/promptfit/pkg/context"
	"github.com/easyops/promptfit/pkg/core/message"
)

// wordCounter 按空白分词计数，便于精确构造预算
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

func (c wordCounter) CountMessages(msgs []message.Message) int {
	total := 0
	for _, m := range msgs {
		total += c.Count(m.Content)
	}
	return total
}

// recordingCompactor 记录输入并返回固定输出
type recordingCompactor struct {
	mu     sync.Mutex
	inputs []string
	output func(text string) (string, error)
}

func (c *recordingCompactor) Compact(_ context.Context, text string) (string, error) {
	c.mu.Lock()
	c.inputs = append(c.inputs, text)
	c.mu.Unlock()
	if c.output == nil {
		return "x ", nil
	}
	return c.output(text)
}

func (c *recordingCompactor) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.inputs...)
}

// fakeSubmitter 记录提交的请求，摘要请求和最终请求分别应答
type fakeSubmitter struct {
	mu        sync.Mutex
	requests  [][]message.Message
	summary   string
	reply     string
	submitErr error
}

func (s *fakeSubmitter) Submit(_ context.Context, msgs []message.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, msgs)
	if s.submitErr != nil {
		return "", s.submitErr
	}
	if isSummaryRequest(msgs) {
		return s.summary, nil
	}
	return s.reply, nil
}

func (s *fakeSubmitter) summaryCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, r := range s.requests {
		if isSummaryRequest(r) {
			n++
		}
	}
	return n
}

func (s *fakeSubmitter) lastRequest() []message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func isSummaryRequest(msgs []message.Message) bool {
	template := agentctx.SummaryRequest("")
	return len(msgs) == 2 && msgs[0] == template[0]
}

func words(n int, word string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = word
	}
	return strings.Join(parts, " ")
}
