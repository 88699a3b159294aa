package domain_test

import (
	"testing"

	"github.com/abdidvp/dataval/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestScanResult_AddFile_KeepsOrder(t *testing.T) {
	s := &domain.ScanResult{}
	s.AddFile("b.json")
	s.AddFile("a.xml")
	s.AddFile("c.csv")
	assert.Equal(t, []string{"a.xml", "b.json", "c.csv"}, s.Files)
}

func TestScanResult_AddFile_Duplicate(t *testing.T) {
	s := &domain.ScanResult{}
	s.AddFile("foo.json")
	s.AddFile("foo.json")
	assert.Len(t, s.Files, 1)
}

func TestScanResult_RemoveFile(t *testing.T) {
	s := &domain.ScanResult{Files: []string{"a.xml", "b.json", "c.csv"}}
	s.RemoveFile("b.json")
	assert.Equal(t, []string{"a.xml", "c.csv"}, s.Files)
}

func TestScanResult_RemoveFile_NonExistent(t *testing.T) {
	s := &domain.ScanResult{Files: []string{"foo.json"}}
	s.RemoveFile("nonexistent.json") // should not panic
	assert.Equal(t, []string{"foo.json"}, s.Files)
}
