package paymentmethod

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/yourorg/multisafepay-gateway/internal/logger"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
)

// Custom field keys attached to installed payment methods.
const (
	FieldIsMultiSafepay = "is_multisafepay"
	FieldGateway        = "multisafepay_gateway"
	FieldTemplate       = "multisafepay_template"
	FieldLogo           = "multisafepay_logo"
	FieldRequiresGender = "multisafepay_requires_gender"
	FieldHasIssuers     = "multisafepay_has_issuers"
)

var paymentMethodNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://multisafepay.com/payment-methods"))

// PaymentMethodID is the stable entity id of a descriptor's payment method.
func PaymentMethodID(d Descriptor) string {
	return uuid.NewSHA1(paymentMethodNamespace, []byte(d.HandlerIdentifier())).String()
}

// SyncOptions carries the idempotency state of one installation run. Processed
// holds the payment method ids already written; it is updated by Sync.
type SyncOptions struct {
	BatchMode bool
	Processed map[string]struct{}
}

// Installer writes the descriptor table to the platform's payment method storage.
type Installer struct {
	repo     repository.Repository[model.PaymentMethod]
	registry *Registry
}

// NewInstaller creates a new Installer.
func NewInstaller(repo repository.Repository[model.PaymentMethod], registry *Registry) *Installer {
	if repo == nil || registry == nil {
		panic("installer: repository and registry cannot be nil")
	}
	return &Installer{repo: repo, registry: registry}
}

// Sync upserts every descriptor not yet processed and returns how many were written.
// Existing entities keep their active flag. In batch mode all entities are written
// with a single upsert.
func (i *Installer) Sync(ctx context.Context, opts SyncOptions) (int, error) {
	if opts.Processed == nil {
		opts.Processed = make(map[string]struct{})
	}

	var pending []model.PaymentMethod
	var ids []string
	for _, d := range i.registry.All() {
		id := PaymentMethodID(d)
		if _, done := opts.Processed[id]; done {
			continue
		}
		ids = append(ids, id)
		pending = append(pending, Entity(d))
	}
	if len(pending) == 0 {
		return 0, nil
	}

	existing, err := i.repo.Search(ctx, repository.NewCriteria(ids...))
	if err != nil {
		return 0, fmt.Errorf("failed to load installed payment methods: %w", err)
	}
	active := make(map[string]bool, existing.Total())
	for _, pm := range existing.Entities {
		active[pm.ID] = pm.Active
	}
	for idx := range pending {
		if was, ok := active[pending[idx].ID]; ok {
			pending[idx].Active = was
		}
	}

	if opts.BatchMode {
		if err := i.repo.Upsert(ctx, pending); err != nil {
			return 0, fmt.Errorf("failed to install payment methods: %w", err)
		}
		for _, pm := range pending {
			opts.Processed[pm.ID] = struct{}{}
		}
	} else {
		for _, pm := range pending {
			if err := i.repo.Upsert(ctx, []model.PaymentMethod{pm}); err != nil {
				return 0, fmt.Errorf("failed to install payment method %s: %w", pm.HandlerIdentifier, err)
			}
			opts.Processed[pm.ID] = struct{}{}
		}
	}

	logger.FromContext(ctx).Info().Int("count", len(pending)).Bool("batch", opts.BatchMode).Msg("Payment methods synchronised")
	return len(pending), nil
}

// Entity converts a descriptor into a new, active payment method entity.
func Entity(d Descriptor) model.PaymentMethod {
	fields := map[string]string{
		FieldIsMultiSafepay: "true",
		FieldGateway:        string(d.ID),
	}
	if d.Template != "" {
		fields[FieldTemplate] = d.Template
	}
	if d.Media != "" {
		fields[FieldLogo] = d.Media
	}
	if d.RequiresGender {
		fields[FieldRequiresGender] = strconv.FormatBool(true)
	}
	if d.HasIssuers {
		fields[FieldHasIssuers] = strconv.FormatBool(true)
	}
	return model.PaymentMethod{
		ID:                PaymentMethodID(d),
		HandlerIdentifier: d.HandlerIdentifier(),
		Name:              d.Name,
		Active:            true,
		MediaPath:         d.Media,
		CustomFields:      fields,
	}
}
