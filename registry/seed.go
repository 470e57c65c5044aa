package registry

import (
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rigpool/rigpool/model"
	"github.com/rigpool/rigpool/pkg/errors"
)

// resourceNameRe restricts names so they embed cleanly into metastore
// keys and log lines.
var resourceNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

type seedFile struct {
	Resource []model.ResourceMeta `toml:"resource"`
}

// LoadSeed reads and validates the resource definitions from a TOML
// seed file.
func LoadSeed(path string) ([]model.ResourceMeta, error) {
	var seed seedFile
	metaData, err := toml.DecodeFile(path, &seed)
	if err != nil {
		return nil, errors.Wrap(errors.ErrSeedConfigInvalid, err, path)
	}
	if undecoded := metaData.Undecoded(); len(undecoded) > 0 {
		var undecodedItems []string
		for _, item := range undecoded {
			undecodedItems = append(undecodedItems, item.String())
		}
		return nil, errors.ErrServerConfigUnknownItem.GenWithStackByArgs(strings.Join(undecodedItems, ","))
	}
	if err := ValidateSeed(seed.Resource); err != nil {
		return nil, err
	}
	return seed.Resource, nil
}

// ValidateSeed checks the resource set as a whole: names, mode
// consistency and sub resource references.
func ValidateSeed(metas []model.ResourceMeta) error {
	byName := make(map[model.ResourceID]*model.ResourceMeta, len(metas))
	for i := range metas {
		meta := &metas[i]
		if !resourceNameRe.MatchString(meta.Name) {
			return errors.ErrSeedConfigInvalid.GenWithStackByArgs("bad resource name " + meta.Name)
		}
		if _, ok := byName[meta.Name]; ok {
			return errors.ErrDuplicateResource.GenWithStackByArgs(meta.Name)
		}
		byName[meta.Name] = meta

		if meta.Mode == "" {
			meta.Mode = model.ModeExclusive
		}
		if !meta.Mode.Valid() {
			return errors.ErrSeedConfigInvalid.GenWithStackByArgs("unknown mode of " + meta.Name)
		}
		switch meta.Mode {
		case model.ModeExclusive:
			if meta.MaxHolders > 1 {
				return errors.ErrSeedConfigInvalid.GenWithStackByArgs("exclusive resource " + meta.Name + " cannot have max-holders")
			}
			meta.MaxHolders = 1
		case model.ModeShared:
			// zero means no cap on concurrent shared holders
			if meta.MaxHolders < 0 {
				return errors.ErrSeedConfigInvalid.GenWithStackByArgs("bad max-holders of " + meta.Name)
			}
		}
		if meta.MaxLeaseTTLSeconds < 0 {
			return errors.ErrSeedConfigInvalid.GenWithStackByArgs("negative max-lease-ttl-seconds of " + meta.Name)
		}
	}

	parentOf := make(map[model.ResourceID]model.ResourceID)
	for i := range metas {
		meta := &metas[i]
		if len(meta.SubResources) == 0 {
			continue
		}
		if meta.Mode != model.ModeExclusive {
			return errors.ErrSeedConfigInvalid.GenWithStackByArgs("resource " + meta.Name + " with sub resources must be exclusive")
		}
		seen := make(map[model.ResourceID]struct{}, len(meta.SubResources))
		for _, sub := range meta.SubResources {
			if sub == meta.Name {
				return errors.ErrUnknownSubResource.GenWithStackByArgs(meta.Name, sub)
			}
			if _, dup := seen[sub]; dup {
				return errors.ErrSeedConfigInvalid.GenWithStackByArgs("resource " + meta.Name + " lists sub resource " + sub + " twice")
			}
			seen[sub] = struct{}{}
			if prev, claimed := parentOf[sub]; claimed {
				return errors.ErrSeedConfigInvalid.GenWithStackByArgs("sub resource " + sub + " belongs to both " + prev + " and " + meta.Name)
			}
			parentOf[sub] = meta.Name
			subMeta, ok := byName[sub]
			if !ok {
				return errors.ErrUnknownSubResource.GenWithStackByArgs(meta.Name, sub)
			}
			// a sub resource is claimed through its parent, letting tag
			// matches grab it on the side would leave the parent blocked
			// with no visible holder
			if len(subMeta.Tags) > 0 {
				return errors.ErrSeedConfigInvalid.GenWithStackByArgs("sub resource " + sub + " cannot carry tags")
			}
			// one level only, a parent cannot be another parent's child
			if len(subMeta.SubResources) > 0 {
				return errors.ErrSeedConfigInvalid.GenWithStackByArgs("sub resource " + sub + " has sub resources of its own")
			}
		}
	}
	return nil
}
