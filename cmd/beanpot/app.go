package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/beanpot-io/beanpot-go/container"
)

// validateManifest parses and validates a manifest file, returning a
// human-readable report on success.
func validateManifest(path string) (string, error) {
	m, err := loadManifest(path)
	if err != nil {
		return "", err
	}

	order, err := container.PlanStartOrder(m)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "manifest %s is valid\n", path)
	if m.Container.Name != "" {
		fmt.Fprintf(&b, "container: %s\n", m.Container.Name)
	}
	fmt.Fprintf(&b, "beans: %d\n", len(m.Beans))
	fmt.Fprintf(&b, "start order: %s\n", strings.Join(order, ", "))
	return b.String(), nil
}

// renderGraph prints each bean's direct dependencies and the computed
// start order.
func renderGraph(path string) (string, error) {
	m, err := loadManifest(path)
	if err != nil {
		return "", err
	}

	order, err := container.PlanStartOrder(m)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(m.Beans))
	deps := make(map[string][]string, len(m.Beans))
	for i := range m.Beans {
		spec := &m.Beans[i]
		names = append(names, spec.Name)
		sorted := append([]string{}, spec.DependsOn...)
		sort.Strings(sorted)
		deps[spec.Name] = sorted
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		spec, _ := m.Bean(name)
		marker := ""
		if spec.Lazy {
			marker = " (lazy)"
		}
		if len(deps[name]) == 0 {
			fmt.Fprintf(&b, "%s%s\n", name, marker)
			continue
		}
		fmt.Fprintf(&b, "%s%s -> %s\n", name, marker, strings.Join(deps[name], ", "))
	}
	fmt.Fprintf(&b, "\nstart order: %s\n", strings.Join(order, ", "))
	return b.String(), nil
}

func loadManifest(path string) (*container.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return container.ParseManifest(data)
}
