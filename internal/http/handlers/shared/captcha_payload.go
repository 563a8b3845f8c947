package shared

import "strings"

// CaptchaPayloadRequest carries the image captcha answer on auth requests.
type CaptchaPayloadRequest struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// Normalized returns the trimmed id and answer.
func (r CaptchaPayloadRequest) Normalized() (string, string) {
	return strings.TrimSpace(r.CaptchaID), strings.TrimSpace(r.CaptchaCode)
}
