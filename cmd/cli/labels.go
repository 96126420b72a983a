package main

import (
	"strings"

	dto "github.com/prometheus/client_model/go"
)

// labels renders metric labels as {k="v",...}, skipping the instance label
func labels(pairs []*dto.LabelPair) string {
	var parts []string
	for _, p := range pairs {
		if p.GetName() == "instance" {
			continue
		}
		parts = append(parts, p.GetName()+`="`+p.GetValue()+`"`)
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, ",") + "}"
}
