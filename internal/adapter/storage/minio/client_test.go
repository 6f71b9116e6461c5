package minio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL_RoundTrip(t *testing.T) {
	url := ObjectURL("http://localhost:9000/", "recipes", "images/abc.png")
	assert.Equal(t, "http://localhost:9000/recipes/images/abc.png", url)

	key, ok := KeyFromURL("http://localhost:9000", "recipes", url)
	assert.True(t, ok)
	assert.Equal(t, "images/abc.png", key)
}

func TestKeyFromURL_Foreign(t *testing.T) {
	tests := []string{
		"https://cdn.example.com/recipes/images/abc.png",
		"http://localhost:9000/other/images/abc.png",
		"http://localhost:9000/recipes/",
		"",
	}
	for _, url := range tests {
		_, ok := KeyFromURL("http://localhost:9000", "recipes", url)
		assert.False(t, ok, url)
	}
}
