package converter

import (
	"log/slog"

	"github.com/yuanying/epub2obsidian/internal/epub"
	"github.com/yuanying/epub2obsidian/internal/vault"
)

// BookInfo is what a conversion of an EPUB would produce, without the
// rendered notes.
type BookInfo struct {
	Metadata vault.Metadata
	Folder   string
	Chapters []vault.Chapter
	Images   int
	Cover    string
}

// Inspect reads the EPUB at path and resolves its chapter names without
// rendering or writing anything.
func Inspect(path string, logger *slog.Logger) (*BookInfo, error) {
	if err := CheckInput(path); err != nil {
		return nil, fail(path, StageRead, ErrInput, err)
	}
	book, err := epub.Read(path, epub.ReadOptions{Logger: logger})
	if err != nil {
		return nil, fail(path, StageRead, ErrParse, err)
	}
	vb := toVaultBook(book)
	return &BookInfo{
		Metadata: vb.Metadata,
		Folder:   vault.FolderName(vb.Metadata),
		Chapters: vault.Chapters(vb.Documents),
		Images:   len(vb.Images),
		Cover:    vb.Cover,
	}, nil
}
