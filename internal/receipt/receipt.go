package receipt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"ms-storefront/internal/models"

	"github.com/skip2/go-qrcode"
)

// Generator produces the encrypted QR receipt handed to buyers of
// authenticated second-hand pairs. The payload is AES-encrypted so the
// QR can be scanned at consignment drop-off without exposing order data.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

type receiptPayload struct {
	OrderID  string             `json:"order_id"`
	UserID   string             `json:"user_id"`
	Total    float64            `json:"total"`
	Items    []models.OrderItem `json:"items"`
	IssuedAt time.Time          `json:"issued_at"`
}

// GenerateOrderReceipt encodes the order and its items into an encrypted
// QR PNG.
func (g *Generator) GenerateOrderReceipt(order models.Order, items []models.OrderItem) ([]byte, error) {
	payload := receiptPayload{
		OrderID:  order.OrderID,
		UserID:   order.UserID,
		Total:    order.Total,
		Items:    items,
		IssuedAt: time.Now(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, g.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
