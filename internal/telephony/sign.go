package telephony

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

// SignRequest applies the communication services HMAC-SHA256 scheme: the
// request is stamped with a UTC date and the SHA-256 of its body, then the
// verb, path with query, and those headers are signed with the resource
// access key.
func SignRequest(req *http.Request, accessKey string, body []byte) error {
	key, err := base64.StdEncoding.DecodeString(accessKey)
	if err != nil {
		return fmt.Errorf("decode access key: %w", err)
	}

	contentHash := sha256.Sum256(body)
	contentHashB64 := base64.StdEncoding.EncodeToString(contentHash[:])
	date := time.Now().UTC().Format(http.TimeFormat)

	pathAndQuery := req.URL.Path
	if req.URL.RawQuery != "" {
		pathAndQuery += "?" + req.URL.RawQuery
	}
	stringToSign := fmt.Sprintf("%s\n%s\n%s;%s;%s",
		req.Method, pathAndQuery, date, req.URL.Host, contentHashB64)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("x-ms-date", date)
	req.Header.Set("x-ms-content-sha256", contentHashB64)
	req.Header.Set("Authorization",
		"HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature="+signature)
	return nil
}
