package epub

import (
	"encoding/xml"
	"strings"
)

const (
	encryptionPath = "META-INF/encryption.xml"
	sinfPath       = "META-INF/sinf.xml" // Apple FairPlay
)

// Font obfuscation is allowed; the fonts are simply not needed for Markdown.
var fontObfuscationAlgorithms = map[string]bool{
	"http://www.idpf.org/2008/embedding": true,
	"http://ns.adobe.com/pdf/enc#RC":     true,
}

type encryptionDoc struct {
	EncryptedData []struct {
		Method struct {
			Algorithm string `xml:"Algorithm,attr"`
		} `xml:"EncryptionMethod"`
	} `xml:"EncryptedData"`
}

// checkDRM rejects archives whose content documents are encrypted.
func (r *EPUBReader) checkDRM() error {
	if r.Has(sinfPath) {
		return ErrDRMProtected
	}
	if !r.Has(encryptionPath) {
		return nil
	}

	data, err := r.ReadFile(encryptionPath)
	if err != nil {
		return ErrDRMProtected
	}

	var enc encryptionDoc
	if err := xml.Unmarshal(data, &enc); err != nil {
		return ErrDRMProtected
	}
	for _, ed := range enc.EncryptedData {
		if !fontObfuscationAlgorithms[strings.TrimSpace(ed.Method.Algorithm)] {
			return ErrDRMProtected
		}
	}
	return nil
}
