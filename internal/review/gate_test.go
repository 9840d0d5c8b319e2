package review

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketgate/backend/internal/ai"
	"github.com/ticketgate/backend/internal/checklist"
)

type fakeGenerator struct {
	mu         sync.Mutex
	calls      int
	system     string
	prompt     string
	reply      string
	err        error
	configured bool
}

func (f *fakeGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.system = system
	f.prompt = prompt
	return f.reply, f.err
}

func (f *fakeGenerator) Configured() bool { return f.configured }

func newFake(reply string) *fakeGenerator {
	return &fakeGenerator{reply: reply, configured: true}
}

func validRequest() Request {
	return Request{Title: "メニュー変更", Category: checklist.LineRichMenu, Content: "左下ボタンを予約に変更"}
}

func TestReviewNotConfigured(t *testing.T) {
	f := newFake(`{"status":"OK"}`)
	f.configured = false
	_, err := NewGate(f, zerolog.Nop()).Review(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Zero(t, f.calls)

	_, err = NewGate(nil, zerolog.Nop()).Review(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestReviewConfigurationCheckedBeforeValidation(t *testing.T) {
	f := newFake("")
	f.configured = false
	_, err := NewGate(f, zerolog.Nop()).Review(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestReviewValidation(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*Request)
		field string
	}{
		{"title", func(r *Request) { r.Title = "  " }, "title"},
		{"category", func(r *Request) { r.Category = "" }, "category"},
		{"content", func(r *Request) { r.Content = "\n" }, "content"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFake(`{"status":"OK"}`)
			req := validRequest()
			tc.mut(&req)
			_, err := NewGate(f, zerolog.Nop()).Review(context.Background(), req)
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.Zero(t, f.calls)
		})
	}
}

func TestReviewBackendFailure(t *testing.T) {
	f := newFake("")
	f.err = ai.RateLimitError{}
	_, err := NewGate(f, zerolog.Nop()).Review(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrBackend)
	var rl ai.RateLimitError
	assert.True(t, errors.As(err, &rl))
	assert.Equal(t, 1, f.calls)
}

func TestReviewRichMenuEndToEnd(t *testing.T) {
	f := newFake("以下が判定です。\n```json\n{\n  \"status\": \"NG\",\n  \"feedback\": [\"反映希望日時が記載されていません\"]\n}\n```")
	req := validRequest()
	req.Metadata = map[string]string{"target_menu": "メインメニュー", "deadline": ""}

	v, err := NewGate(f, zerolog.Nop()).Review(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusNG, v.Status)
	assert.Equal(t, []string{"反映希望日時が記載されていません"}, v.Feedback)
	assert.Equal(t, 1, f.calls)
	assert.Contains(t, f.system, "5. 反映希望日時")
	assert.Contains(t, f.prompt, "## 追加情報\n- target_menu: メインメニュー\n")
	assert.NotContains(t, f.prompt, "deadline")
}

func TestReviewCallsAreIndependent(t *testing.T) {
	f := newFake(`{"status":"NG","feedback":["反映希望日時がありません"]}`)
	g := NewGate(f, zerolog.Nop())

	first, err := g.Review(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusNG, first.Status)

	req := validRequest()
	req.Content = "左下ボタンを予約に変更、反映は5月1日10時"
	f.reply = `{"status":"OK","feedback":[],"summary":"予約ボタン変更"}`
	second, err := g.Review(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, Approved("予約ボタン変更"), second)
	assert.Contains(t, f.prompt, "反映は5月1日10時")
	assert.Equal(t, 2, f.calls)
}

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		want    Verdict
		wantErr bool
	}{
		{name: "ok with summary", text: `{"status":"OK","feedback":[],"summary":"s"}`, want: Approved("s")},
		{name: "ok without summary", text: `{"status":"OK"}`, want: Approved("")},
		{name: "ng", text: `noise {"status":"NG","feedback":["a"," ","b"]} trailer`, want: Rejected("a", "b")},
		{name: "trailing comma and comment", text: "{\n// verdict\n\"status\": \"NG\", \"feedback\": [\"x\",],\n}", want: Rejected("x")},
		{name: "ng without feedback", text: `{"status":"NG","feedback":[]}`, wantErr: true},
		{name: "ng blank feedback", text: `{"status":"NG","feedback":["  "]}`, wantErr: true},
		{name: "unknown status", text: `{"status":"MAYBE","feedback":[]}`, wantErr: true},
		{name: "no braces", text: "OK", wantErr: true},
		{name: "reversed braces", text: "} nope {", wantErr: true},
		{name: "garbage inside", text: "{not json}", wantErr: true},
		{name: "second object after verdict", text: `{"status":"OK","feedback":[],"summary":"draft"} 訂正します: {"status":"NG","feedback":["反映希望日時がありません"]}`, wantErr: true},
		{name: "lowercase ok", text: `{"status":"ok","feedback":[]}`, wantErr: true},
		{name: "padded ok", text: `{"status":" OK ","feedback":[]}`, wantErr: true},
		{name: "lowercase ng", text: `{"status":"ng","feedback":["a"]}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseVerdict(tc.text)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReviewWithMockGenerator(t *testing.T) {
	g := NewGate(ai.MockGenerator{ModelVersion: "mock-v1"}, zerolog.Nop())
	req := validRequest()
	req.Content = "画像は後で送ります"
	v, err := g.Review(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, v.OK())
	assert.NotEmpty(t, v.Feedback)
}

func TestVerdictJSONShape(t *testing.T) {
	b, err := json.Marshal(Approved(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"OK","feedback":[],"summary":""}`, string(b))

	b, err = json.Marshal(Rejected("画像がありません"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"NG","feedback":["画像がありません"]}`, string(b))
}
