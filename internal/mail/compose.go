package mail

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
)

// Subject line for every guide delivery, purchase-confirmed or direct.
const guideSubject = "🎉 Claude 완벽 가이드 구매 완료!"

// kst is the timezone purchase timestamps are rendered in. The audience is
// Korean; server timezone must not leak into the email.
var kst = time.FixedZone("KST", 9*60*60)

// ComposeParams parameterizes the guide-delivery email body.
type ComposeParams struct {
	ToEmail string
	ToName  string // optional; greeting falls back to "고객"

	OrderID string // optional; shown in the purchase-details block when set
	Amount  int64  // KRW; optional, shown when positive

	IssuedAt time.Time // purchase/delivery timestamp

	// Exactly one delivery mode per message: a download link when
	// DownloadURL is set, an attachment notice otherwise. The dispatcher
	// attaches the actual file in attachment mode; Compose never does I/O.
	DownloadURL string
}

// templateData is what guideTemplate actually renders. All user-supplied
// fields pass through html/template and are escaped on output.
type templateData struct {
	Name        string
	Email       string
	OrderID     string
	Amount      string // pre-formatted "₩9,900"; empty when not shown
	IssuedAt    string
	DownloadURL string // empty → attachment section renders instead
}

// Compose builds the guide-delivery message. Pure: same params (including
// IssuedAt) always yield byte-identical output.
func Compose(p ComposeParams) (Message, error) {
	name := strings.TrimSpace(p.ToName)
	if name == "" {
		name = "고객"
	}

	data := templateData{
		Name:        name,
		Email:       p.ToEmail,
		OrderID:     p.OrderID,
		IssuedAt:    p.IssuedAt.In(kst).Format("2006-01-02 15:04:05"),
		DownloadURL: p.DownloadURL,
	}
	if p.Amount > 0 {
		data.Amount = "₩" + formatComma(p.Amount)
	}

	var b strings.Builder
	if err := guideTemplate.Execute(&b, data); err != nil {
		return Message{}, fmt.Errorf("mail: render guide template: %w", err)
	}

	return Message{
		To:      p.ToEmail,
		Subject: guideSubject,
		HTML:    b.String(),
	}, nil
}

// formatComma renders n with thousands separators: 9900 → "9,900".
func formatComma(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// guideTemplate is the fixed HTML body. html/template escapes Name, Email,
// OrderID and the URL on output, so customer-supplied values can never
// inject markup.
var guideTemplate = template.Must(template.New("guide").Parse(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; max-width: 600px; margin: 0 auto; padding: 40px 20px;">
  <div style="text-align: center; margin-bottom: 40px;">
    <div style="font-size: 60px; margin-bottom: 20px;">🤖</div>
    <h1 style="color: #2C3E50; margin-bottom: 10px;">{{.Name}}님, 구매해주셔서 감사합니다!</h1>
    <p style="color: #7f8c8d; font-size: 16px;">Claude 완벽 가이드를 구매해주셔서 진심으로 감사드립니다.</p>
  </div>

{{if .DownloadURL}}  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; border-radius: 15px; margin-bottom: 30px; text-align: center;">
    <h2 style="margin-bottom: 20px; font-size: 24px;">PDF 다운로드</h2>
    <a href="{{.DownloadURL}}" style="display: inline-block; background: white; color: #667eea; padding: 15px 40px; text-decoration: none; border-radius: 10px; font-weight: 700; font-size: 18px;">
      📥 PDF 다운로드하기
    </a>
  </div>
{{else}}  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; border-radius: 15px; margin-bottom: 30px; text-align: center;">
    <h2 style="margin-bottom: 15px; font-size: 24px;">📎 PDF 파일 첨부</h2>
    <p style="font-size: 16px; opacity: 0.95;">이 이메일에 PDF 파일이 첨부되어 있습니다.</p>
    <p style="font-size: 14px; margin-top: 15px; opacity: 0.9;">📥 첨부파일을 다운로드하여 바로 이용하실 수 있습니다</p>
  </div>
{{end}}
  <div style="background: #f8f9fa; padding: 20px; border-radius: 10px; margin-bottom: 20px;">
    <h3 style="color: #2C3E50; margin-bottom: 15px;">📋 구매 내역</h3>
{{if .OrderID}}    <p style="color: #546E7A; margin: 8px 0;"><strong>주문번호:</strong> {{.OrderID}}</p>
{{end}}    <p style="color: #546E7A; margin: 8px 0;"><strong>이메일:</strong> {{.Email}}</p>
{{if .Amount}}    <p style="color: #546E7A; margin: 8px 0;"><strong>결제금액:</strong> {{.Amount}}</p>
{{end}}    <p style="color: #546E7A; margin: 8px 0;"><strong>결제일시:</strong> {{.IssuedAt}} (KST)</p>
  </div>

  <div style="background: #e3f2fd; padding: 20px; border-radius: 10px; margin-bottom: 20px;">
    <h3 style="color: #1976d2; margin-bottom: 15px;">💡 가이드 활용 팁</h3>
    <ul style="color: #546E7A; line-height: 1.8; padding-left: 20px;">
      <li>차례를 먼저 확인하고 필요한 부분부터 읽어보세요</li>
      <li>설치 과정은 단계별로 천천히 따라해보세요</li>
      <li>MCP 연결 가이드는 꼭 읽어보세요!</li>
      <li>토큰 절약 노하우는 실전에서 큰 도움이 됩니다</li>
    </ul>
  </div>

  <div style="background: #e8f5e9; padding: 20px; border-radius: 10px; margin-bottom: 20px;">
    <h3 style="color: #2e7d32; margin-bottom: 15px;">🎁 구매자 특별 혜택</h3>
    <ul style="color: #546E7A; line-height: 1.8; padding-left: 20px;">
      <li>GitHub를 통해서 지속적 업데이트 버전 제공</li>
      <li>카카오톡 채널을 통한 챗봇 및 저자와의 소통</li>
      <li>AI 활용 사업모델에 대한 무료 멘토링</li>
    </ul>
  </div>

  <div style="text-align: center; padding: 20px; border-top: 2px solid #e0e0e0;">
    <p style="color: #7f8c8d; font-size: 14px; margin-bottom: 10px;">문의사항이 있으시면 언제든 연락주세요!</p>
    <a href="http://pf.kakao.com/_WqSxcn/chat" style="display: inline-block; background: #FEE500; color: #3C1E1E; padding: 12px 30px; text-decoration: none; border-radius: 8px; font-weight: 700; margin-top: 10px;">
      💬 카카오톡 채널로 문의하기
    </a>
  </div>

  <div style="text-align: center; padding: 20px; font-size: 12px; color: #999;">
    <p>이 이메일은 구매 확인 및 PDF 제공을 위한 자동 발송 메일입니다.</p>
    <p>받는 사람: {{.Email}}</p>
  </div>
</div>`))
