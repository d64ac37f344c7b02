package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewerURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", ViewerURL(":8080"))
	assert.Equal(t, "http://localhost:9000", ViewerURL("0.0.0.0:9000"))
	assert.Equal(t, "http://192.168.1.5:8080", ViewerURL("192.168.1.5:8080"))
	assert.Equal(t, "http://[fe80::1]:8080", ViewerURL("[fe80::1]:8080"))
	assert.Equal(t, "http://localhost:8080", ViewerURL("bogus"))
}
