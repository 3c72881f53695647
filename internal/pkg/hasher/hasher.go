package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Hasher define o contrato para hashing e verificação de senhas.
// O domínio não conhece o algoritmo concreto; apenas esta interface.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash string, password string) (bool, error)
}

// Params agrupa os parâmetros de custo do Argon2id.
// Tempo e memória são ajustáveis via configuração para calibrar a resistência
// a ataques de força bruta offline.
type Params struct {
	Time     uint32
	MemoryKB uint32
	Threads  uint8
}

const (
	saltLen = 16
	keyLen  = 32
)

// ErrMalformedHash indica que o hash armazenado está corrompido ou em formato
// desconhecido. Senha incorreta NÃO é um erro: Verify retorna (false, nil).
var ErrMalformedHash = errors.New("hash de senha armazenado é inválido ou corrompido")

// Argon2Hasher é a implementação concreta da interface Hasher usando Argon2id.
type Argon2Hasher struct {
	params Params
}

// NewArgon2Hasher cria uma nova instância do hasher com os custos informados.
// Esta função é chamada no main.go com os valores vindos do config.
func NewArgon2Hasher(params Params) *Argon2Hasher {
	return &Argon2Hasher{params: params}
}

// Hash gera um hash Argon2id com salt aleatório para a senha informada.
// O resultado é autodescritivo: $argon2id$v=19$m=...,t=...,p=...$salt$hash
func (h *Argon2Hasher) Hash(password string) (string, error) {
	// 1. Salt aleatório por senha
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("falha ao gerar salt: %w", err)
	}

	// 2. Derivação da chave com os custos configurados
	hash := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.MemoryKB,
		h.params.Threads,
		keyLen,
	)

	// 3. Codificação no formato padrão PHC
	encodedSalt := base64Encode(salt)
	encodedHash := base64Encode(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKB,
		h.params.Time,
		h.params.Threads,
		encodedSalt,
		encodedHash,
	), nil
}

// Verify compara a senha em texto puro com o hash armazenado.
// A comparação é em tempo constante. Os parâmetros de custo são lidos do
// próprio hash, então hashes antigos continuam verificáveis após retuning.
func (h *Argon2Hasher) Verify(encodedHash string, password string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrMalformedHash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64Decode(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}

	storedKey, err := base64Decode(parts[5])
	if err != nil {
		return false, ErrMalformedHash
	}

	// Recalcula a chave com os parâmetros embutidos no hash armazenado
	candidateKey := argon2.IDKey(
		[]byte(password),
		salt,
		time,
		memory,
		threads,
		uint32(len(storedKey)),
	)

	// Comparação em tempo constante
	if subtle.ConstantTimeCompare(storedKey, candidateKey) == 1 {
		return true, nil
	}
	return false, nil
}
