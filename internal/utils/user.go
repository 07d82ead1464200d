package utils

import (
	"math/rand"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GetRandomEmoji 返回一个随机 emoji 用于默认头像
func GetRandomEmoji() string {
	emojis := []string{"🙂", "😎", "🤓", "🦊", "🐼", "🐸", "🦉", "🐯", "🌱", "🔥", "⭐", "🚀"}
	return emojis[rand.Intn(len(emojis))]
}

const pidLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandString 生成帖子 Pid 用的短随机串
func RandString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = pidLetters[rand.Intn(len(pidLetters))]
	}
	return string(b)
}
