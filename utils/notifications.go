package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const expoPushEndpoint = "https://exp.host/--/api/v2/push/send"

// SendNotification delivers one push message to one Expo push token.
// Best-effort: the caller decides whether a failure matters.
func SendNotification(pushToken, title, body string, data map[string]string) error {
	payload := map[string]interface{}{
		"to":    pushToken,
		"title": title,
		"body":  body,
		"sound": "default",
	}
	if len(data) > 0 {
		payload["data"] = data
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", expoPushEndpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("expo push responded with %d: %s", res.StatusCode, string(respBody))
	}
	return nil
}
