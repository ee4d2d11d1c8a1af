package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const documentPart = "word/document.xml"

// extractDocx 按文档顺序读取段落与表格单元格的文本。
// 段落之间以换行分隔，同一表格行内的单元格以空格分隔。
func extractDocx(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var part *zip.File
	for _, f := range reader.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", errors.New("missing " + documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		out        strings.Builder
		para       strings.Builder
		tableDepth int
		inText     bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "tab":
				para.WriteString("\t")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth--
			case "t":
				inText = false
			case "p":
				text := para.String()
				if strings.TrimSpace(text) == "" {
					continue
				}
				if tableDepth > 0 {
					out.WriteString(text + " ")
				} else {
					out.WriteString(text + "\n")
				}
			case "tr":
				out.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	text := out.String()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("No text found in DOCX file")
	}
	return text, nil
}
