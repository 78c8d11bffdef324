package storage

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Cloudinary configuration via environment variables
// CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET, CLOUDINARY_FOLDER (optional)

func InitializeMediaStore() {
	if os.Getenv("CLOUDINARY_CLOUD_NAME") == "" || os.Getenv("CLOUDINARY_API_KEY") == "" || os.Getenv("CLOUDINARY_API_SECRET") == "" {
		log.Println("⚠️  Cloudinary credentials not fully configured, uploads will fail until they are set")
		return
	}
	log.Println("🔧 Media store initialized for cloud:", os.Getenv("CLOUDINARY_CLOUD_NAME"))
}

// resourceTypeFor maps a MIME type onto Cloudinary's resource buckets.
// Audio goes up as "video": Cloudinary hosts voice notes under the video
// resource type.
func resourceTypeFor(mime string) string {
	switch {
	case strings.HasPrefix(mime, "video/"), strings.HasPrefix(mime, "audio/"):
		return "video"
	case strings.HasPrefix(mime, "image/"):
		return "image"
	default:
		return "raw"
	}
}

// UploadBase64Media pushes a base64 payload to Cloudinary and returns the
// hosted URL. A non-nil error means nothing was stored; the caller aborts
// message composition and no message may reference the attempt.
func UploadBase64Media(base64Src, publicID, mime string) (string, error) {
	if base64Src == "" {
		return "", errors.New("empty media payload")
	}

	i := strings.Index(base64Src, ",")
	payload := base64Src
	if i != -1 {
		payload = base64Src[i+1:]
	}

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	folder := os.Getenv("CLOUDINARY_FOLDER")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return "", errors.New("media store credentials are not configured")
	}

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/" + resourceTypeFor(mime) + "/upload"

	form := url.Values{}
	form.Add("file", "data:"+mime+";base64,"+payload)
	form.Add("api_key", apiKey)

	finalPublicID := publicID
	if folder != "" && publicID != "" {
		finalPublicID = folder + "/" + publicID
	}
	if finalPublicID != "" {
		form.Add("public_id", finalPublicID)
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form.Add("timestamp", timestamp)

	// Signed upload: Cloudinary requires a SHA1 over the sorted params
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, apiSecret)
	signature := fmt.Sprintf("%x", sha1.Sum([]byte(signatureString)))
	form.Add("signature", signature)

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != 200 {
		return "", fmt.Errorf("media store responded with status %d", res.StatusCode)
	}

	var cloudRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &cloudRes); err != nil {
		return "", err
	}
	if cloudRes.Error.Message != "" {
		return "", errors.New(cloudRes.Error.Message)
	}

	urlOut := cloudRes.SecureURL
	if urlOut == "" {
		urlOut = cloudRes.URL
	}
	if urlOut == "" {
		return "", errors.New("media store returned no URL")
	}

	return urlOut, nil
}
