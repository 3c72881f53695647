package hasher

import "encoding/base64"

// O formato PHC usa base64 sem padding.

func base64Encode(data []byte) string {
	return base64.RawStdEncoding.EncodeToString(data)
}

func base64Decode(data string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(data)
}
