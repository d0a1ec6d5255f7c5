package anchor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/pelletier/go-toml/v2"

	"examplecpi/internal/domain"
)

// ManifestName is the workspace manifest file.
const ManifestName = "Anchor.toml"

// idlDir is where `anchor build` writes IDLs, relative to the workspace root.
var idlDir = filepath.Join("target", "idl")

var (
	// ErrNoWorkspace is returned when no Anchor.toml exists at or above dir.
	ErrNoWorkspace = errors.New("anchor workspace not found")
	// ErrProgramNotFound is returned for names the workspace does not know.
	ErrProgramNotFound = errors.New("program not found in workspace")
)

// ProgramSpec identifies one deployed program.
type ProgramSpec struct {
	Name domain.ProgramName
	ID   solana.PublicKey
	// IDL is nil when target/idl has no file for the program.
	IDL *IDL
}

// Workspace is a parsed Anchor workspace.
type Workspace struct {
	Root    string
	Cluster string
	Wallet  string

	programs map[string]ProgramSpec
}

// manifest is the part of Anchor.toml the client reads.
type manifest struct {
	Provider struct {
		Cluster string `toml:"cluster"`
		Wallet  string `toml:"wallet"`
	} `toml:"provider"`
	// Programs maps cluster -> program name -> address. Newer Anchor versions
	// also allow a table with an "address" key.
	Programs map[string]map[string]any `toml:"programs"`
}

// FindRoot walks up from dir to the nearest directory holding Anchor.toml.
func FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(abs, ManifestName)); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%w (searched from %s)", ErrNoWorkspace, dir)
		}
		abs = parent
	}
}

// LoadWorkspace locates and parses the workspace containing dir.
func LoadWorkspace(dir string) (*Workspace, error) {
	root, err := FindRoot(dir)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(root, ManifestName))
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := toml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestName, err)
	}

	ws := &Workspace{
		Root:     root,
		Cluster:  m.Provider.Cluster,
		Wallet:   expandHome(m.Provider.Wallet),
		programs: make(map[string]ProgramSpec),
	}

	cluster := ClusterName(m.Provider.Cluster)
	for name, v := range m.Programs[cluster] {
		addr, err := programAddress(v)
		if err != nil {
			return nil, fmt.Errorf("programs.%s.%s: %w", cluster, name, err)
		}
		ws.programs[normalizeName(name)] = ProgramSpec{Name: domain.ProgramName(name), ID: addr}
	}

	if err := ws.loadIDLs(); err != nil {
		return nil, err
	}
	return ws, nil
}

// loadIDLs attaches IDLs to known programs and registers programs that are
// only known through the metadata.address of their IDL.
func (w *Workspace) loadIDLs() error {
	paths, err := filepath.Glob(filepath.Join(w.Root, idlDir, "*.json"))
	if err != nil {
		return err
	}
	for _, p := range paths {
		idl, err := LoadIDL(p)
		if err != nil {
			return err
		}
		name := idl.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(p), ".json")
		}
		key := normalizeName(name)

		spec, ok := w.programs[key]
		if !ok {
			if idl.Metadata == nil || idl.Metadata.Address == "" {
				continue
			}
			addr, err := solana.PublicKeyFromBase58(idl.Metadata.Address)
			if err != nil {
				return fmt.Errorf("idl %s metadata.address: %w", p, err)
			}
			spec = ProgramSpec{Name: domain.ProgramName(name), ID: addr}
		}
		spec.IDL = idl
		w.programs[key] = spec
	}
	return nil
}

// Program resolves a program by any of the spellings Anchor accepts.
func (w *Workspace) Program(name string) (ProgramSpec, error) {
	spec, ok := w.programs[normalizeName(name)]
	if !ok {
		return ProgramSpec{}, fmt.Errorf("%w: %s", ErrProgramNotFound, name)
	}
	return spec, nil
}

// Programs lists the workspace programs sorted by name.
func (w *Workspace) Programs() []ProgramSpec {
	out := make([]ProgramSpec, 0, len(w.programs))
	for _, p := range w.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ClusterName maps a provider cluster setting, which may be a moniker or an
// RPC URL, to the key used under [programs.*].
func ClusterName(cluster string) string {
	c := strings.ToLower(strings.TrimSpace(cluster))
	switch {
	case c == "":
		return "localnet"
	case strings.Contains(c, "127.0.0.1"), strings.Contains(c, "localhost"):
		return "localnet"
	case strings.Contains(c, "devnet"):
		return "devnet"
	case strings.Contains(c, "testnet"):
		return "testnet"
	case strings.Contains(c, "mainnet"):
		return "mainnet"
	}
	return c
}

func programAddress(v any) (solana.PublicKey, error) {
	switch t := v.(type) {
	case string:
		return solana.PublicKeyFromBase58(t)
	case map[string]any:
		if s, ok := t["address"].(string); ok {
			return solana.PublicKeyFromBase58(s)
		}
	}
	return solana.PublicKey{}, fmt.Errorf("unsupported program entry %v", v)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
