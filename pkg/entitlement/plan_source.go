package entitlement

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// staticSource implements PlanSource over a fixed plan list.
type staticSource struct {
	plans map[string]Plan
}

// NewStaticSource returns a PlanSource serving the given plans. Duplicate
// plan codes are rejected at Load time.
func NewStaticSource(plans ...Plan) PlanSource {
	byCode := make(map[string]Plan, len(plans))
	dup := ""
	for _, plan := range plans {
		if _, exists := byCode[plan.Code]; exists && dup == "" {
			dup = plan.Code
		}
		byCode[plan.Code] = plan
	}
	if dup != "" {
		return &failingSource{err: fmt.Errorf("duplicate plan code %s", dup)}
	}
	return &staticSource{plans: byCode}
}

func (s *staticSource) Load(ctx context.Context) (map[string]Plan, error) {
	return maps.Clone(s.plans), nil
}

type failingSource struct {
	err error
}

func (s *failingSource) Load(ctx context.Context) (map[string]Plan, error) {
	return nil, s.err
}

// yamlSource implements PlanSource over a YAML file so deployments can ship
// the plan catalog as configuration:
//
//	plans:
//	  - code: free
//	    name: Free
//	    monthly_limit: 3
//	    default: true
//	  - code: premium
//	    name: Premium
//	    monthly_limit: -1
type yamlSource struct {
	path string
}

type yamlPlanFile struct {
	Plans []yamlPlan `yaml:"plans"`
}

type yamlPlan struct {
	Code         string `yaml:"code"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	MonthlyLimit int64  `yaml:"monthly_limit"`
	Default      bool   `yaml:"default"`
}

// NewYAMLSource returns a PlanSource reading the catalog from a YAML file.
// The file is read on Load, which the resolver calls once at construction.
func NewYAMLSource(path string) PlanSource {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(ctx context.Context) (map[string]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var file yamlPlanFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	plans := make(map[string]Plan, len(file.Plans))
	for _, p := range file.Plans {
		if p.Code == "" {
			return nil, errors.New("plan with empty code")
		}
		if _, exists := plans[p.Code]; exists {
			return nil, fmt.Errorf("duplicate plan code %s", p.Code)
		}
		plans[p.Code] = Plan{
			Code:         p.Code,
			Name:         p.Name,
			Description:  p.Description,
			MonthlyLimit: p.MonthlyLimit,
			Default:      p.Default,
		}
	}
	return plans, nil
}
