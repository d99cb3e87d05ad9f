package descriptor

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vicholz/chirp-web/rlog"
)

//go:embed data/*.yaml
var builtinData embed.FS

// Registry is the immutable, process-long collection of protocol and model
// descriptors. It is read-only after initialization.
type Registry struct {
	protocols map[string]Protocol
	models    map[string]Model // key: vendor+"/"+model
}

// modelKey normalizes a vendor/model pair for lookup.
func modelKey(vendor, model string) string {
	return strings.ToLower(vendor) + "/" + strings.ToLower(model)
}

// NewRegistry loads the built-in descriptor set embedded in this binary.
func NewRegistry() (*Registry, error) {
	return LoadFS(builtinData, "data", rlog.Noop{})
}

// LoadDir loads every *.yaml file in dir on the host filesystem, letting an
// operator add a radio without recompiling: drop a descriptor file next to
// the binary and point chirpctl at the directory.
func LoadDir(dir string, logger rlog.Logger) (*Registry, error) {
	return LoadFS(os.DirFS(dir), ".", logger)
}

// LoadFS loads every *.yaml file directly under dir in fsys.
func LoadFS(fsys fs.FS, dir string, logger rlog.Logger) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var docs []rawFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		doc, err := decodeYAML(b)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", e.Name(), err)
		}
		docs = append(docs, doc)
	}
	return load(docs, logger)
}

// load converts every parsed document into the Registry's immutable maps.
func load(entries []rawFile, logger rlog.Logger) (*Registry, error) {
	if logger == nil {
		logger = rlog.Noop{}
	}
	reg := &Registry{protocols: map[string]Protocol{}, models: map[string]Model{}}
	for _, doc := range entries {
		for _, rp := range doc.Protocols {
			p, err := rp.toProtocol()
			if err != nil {
				return nil, err
			}
			if _, exists := reg.protocols[p.ID]; exists {
				return nil, fmt.Errorf("duplicate protocol id %q", p.ID)
			}
			reg.protocols[p.ID] = p
			logger.Debug("registry: loaded protocol %s (handshake=%s)", p.ID, p.Handshake.Variant)
		}
	}
	for _, doc := range entries {
		for _, rm := range doc.Models {
			m := rm.toModel()
			if _, exists := reg.protocols[m.ProtocolID]; !exists {
				return nil, fmt.Errorf("model %s/%s references unknown protocol %q", m.Vendor, m.Model, m.ProtocolID)
			}
			key := modelKey(m.Vendor, m.Model)
			if _, exists := reg.models[key]; exists {
				return nil, fmt.Errorf("duplicate model %s/%s", m.Vendor, m.Model)
			}
			reg.models[key] = m
			logger.Debug("registry: loaded model %s/%s -> protocol %s", m.Vendor, m.Model, m.ProtocolID)
		}
	}
	return reg, nil
}

// Protocol returns the protocol descriptor with the given id.
func (r *Registry) Protocol(id string) (Protocol, bool) {
	p, ok := r.protocols[id]
	return p, ok
}

// Lookup returns the model descriptor for vendor/model, case-insensitively.
func (r *Registry) Lookup(vendor, model string) (Model, bool) {
	m, ok := r.models[modelKey(vendor, model)]
	return m, ok
}

// ResolvedModel bundles a Model with its Protocol, with the model's
// per-field overrides already applied on top of the protocol.
type ResolvedModel struct {
	Model    Model
	Protocol Protocol
}

// Resolve looks up vendor/model and applies its overrides to its protocol.
func (r *Registry) Resolve(vendor, model string) (ResolvedModel, error) {
	m, ok := r.Lookup(vendor, model)
	if !ok {
		return ResolvedModel{}, fmt.Errorf("no model registered for %s/%s", vendor, model)
	}
	p, ok := r.Protocol(m.ProtocolID)
	if !ok {
		return ResolvedModel{}, fmt.Errorf("model %s/%s references unknown protocol %q", vendor, model, m.ProtocolID)
	}
	if m.BaudOverride != nil {
		p.Baud = *m.BaudOverride
	}
	if m.BlockSizeOverride != nil {
		p.Read.BlockSize = *m.BlockSizeOverride
		p.Write.BlockSize = *m.BlockSizeOverride
	}
	return ResolvedModel{Model: m, Protocol: p}, nil
}

// Merge returns a new Registry containing every protocol and model from
// both r and base, with r's entries taking precedence on a key collision.
// Used to layer an operator-supplied descriptor directory over the
// built-in set (chirpctl --descriptor-dir).
func (r *Registry) Merge(base *Registry) *Registry {
	out := &Registry{
		protocols: make(map[string]Protocol, len(base.protocols)+len(r.protocols)),
		models:    make(map[string]Model, len(base.models)+len(r.models)),
	}
	for k, v := range base.protocols {
		out.protocols[k] = v
	}
	for k, v := range base.models {
		out.models[k] = v
	}
	for k, v := range r.protocols {
		out.protocols[k] = v
	}
	for k, v := range r.models {
		out.models[k] = v
	}
	return out
}

// Models lists every registered model, sorted by vendor then model, for
// introspection (chirpctl list-models).
func (r *Registry) Models() []Model {
	out := make([]Model, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Vendor != out[j].Vendor {
			return out[i].Vendor < out[j].Vendor
		}
		return out[i].Model < out[j].Model
	})
	return out
}

// decodeYAML parses one descriptor document's bytes.
func decodeYAML(b []byte) (rawFile, error) {
	var f rawFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, err
	}
	return f, nil
}
