// render - вывод результатов в терминал.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/pribylovaa/go-shop-client/internal/models"
)

// NoResults печатается вместо пустого списка.
const NoResults = "No results found"

// Hits печатает хиты таблицей в порядке бэкенда. Колонки PRICE и USER
// появляются, только если хотя бы у одного хита они заполнены.
func Hits(w io.Writer, res models.SearchResult) error {
	if res.Empty() {
		_, err := fmt.Fprintln(w, NoResults)
		return err
	}

	var withPrice, withUser bool
	for _, h := range res.Hits {
		withPrice = withPrice || len(h.Price) > 0 && string(h.Price) != "null"
		withUser = withUser || h.User != ""
	}

	header := []string{"#", "TITLE"}
	if withPrice {
		header = append(header, "PRICE")
	}
	if withUser {
		header = append(header, "USER")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")

	for i, h := range res.Hits {
		row := []string{strconv.Itoa(i + 1), h.Title}
		if withPrice {
			row = append(row, h.PriceText())
		}
		if withUser {
			row = append(row, h.User)
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

// JSON печатает payload с отступом в 4 пробела.
func JSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "    "); err != nil {
		return fmt.Errorf("render.JSON: %w", err)
	}

	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
