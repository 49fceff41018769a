package actions

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// jobName is the name a workflow is listed under: its file name without extension.
func jobName(w Workflow) string {
	base := path.Base(w.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

func (c *Client) listWorkflows(ctx context.Context) ([]Workflow, error) {
	var all []Workflow
	for page := 1; ; page++ {
		v := url.Values{}
		v.Set("per_page", "100")
		v.Set("page", fmt.Sprint(page))

		var resp workflowsResponse
		if err := c.get(ctx, "actions/workflows?"+v.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("list workflows: %w", err)
		}
		all = append(all, resp.Workflows...)
		if len(resp.Workflows) == 0 || len(all) >= resp.TotalCount {
			break
		}
	}

	byName := make(map[string]Workflow, len(all))
	for _, w := range all {
		byName[jobName(w)] = w
	}
	c.mu.Lock()
	c.workflows = byName
	c.mu.Unlock()
	return all, nil
}

// workflow looks job up, refreshing the workflow list when it is not known yet.
func (c *Client) workflow(ctx context.Context, job string) (Workflow, bool, error) {
	c.mu.Lock()
	w, ok := c.workflows[job]
	c.mu.Unlock()
	if ok {
		return w, true, nil
	}
	if _, err := c.listWorkflows(ctx); err != nil {
		return Workflow{}, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok = c.workflows[job]
	return w, ok, nil
}

// Input is one workflow_dispatch input.
type Input struct {
	Name    string
	Default string
}

type workflowFile struct {
	On yaml.Node `yaml:"on"`
}

// ParseDispatchInputs returns the workflow_dispatch inputs declared in a
// workflow file, in declaration order.
func ParseDispatchInputs(data []byte) ([]Input, error) {
	var wf workflowFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse workflow: %w", err)
	}
	dispatch := mappingValue(&wf.On, "workflow_dispatch")
	if dispatch == nil {
		return nil, nil
	}
	inputs := mappingValue(dispatch, "inputs")
	if inputs == nil {
		return nil, nil
	}

	var out []Input
	for i := 0; i+1 < len(inputs.Content); i += 2 {
		in := Input{Name: inputs.Content[i].Value}
		if def := mappingValue(inputs.Content[i+1], "default"); def != nil && def.Kind == yaml.ScalarNode {
			in.Default = def.Value
		}
		out = append(out, in)
	}
	return out, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func (c *Client) dispatchInputs(ctx context.Context, w Workflow) ([]Input, error) {
	v := url.Values{}
	v.Set("ref", c.ref)
	var file fileContent
	if err := c.get(ctx, "contents/"+w.Path+"?"+v.Encode(), &file); err != nil {
		return nil, fmt.Errorf("read %s: %w", w.Path, err)
	}
	if file.Encoding != "base64" {
		return nil, fmt.Errorf("read %s: unexpected encoding %q", w.Path, file.Encoding)
	}
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", w.Path, err)
	}
	return ParseDispatchInputs(data)
}
