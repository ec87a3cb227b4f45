package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/splitter-dev/splitter/internal/model"
)

func TestDefault(t *testing.T) {
	svc := Default()

	assert.Len(t, svc.All(), len(model.DefaultTags()))
	assert.Equal(t, model.DefaultGeneralTag, svc.General())

	o, ok := svc.Get("Vegan")
	assert.True(t, ok)
	assert.True(t, o.ForUsers)
	assert.True(t, o.ForItems)

	_, ok = svc.Get("Pescatarian")
	assert.False(t, ok)
}

func TestPickers(t *testing.T) {
	svc := Default()

	assert.NotContains(t, svc.UserTags(), model.DefaultGeneralTag)
	assert.Contains(t, svc.ItemTags(), model.DefaultGeneralTag)
	assert.Equal(t, []string{"Alcohol", "Fructose-Free", "Gluten-Free", "Lactose-Free", "Meat", "Vegan", "Vegetarian"}, svc.UserTags())
	assert.True(t, svc.UsableOnItems(model.DefaultGeneralTag))
	assert.False(t, svc.UsableOnUsers(model.DefaultGeneralTag))
	assert.False(t, svc.UsableOnUsers("Unknown"))
}

func TestNewService_GeneralIsForced(t *testing.T) {
	svc := NewService([]model.TagOption{
		{Name: "Shared", ForUsers: true, ForItems: false},
		{Name: "Kids", ForUsers: true, ForItems: true},
		{Name: "Kids", ForUsers: false, ForItems: false},
		{Name: ""},
	}, "Shared")

	assert.Equal(t, "Shared", svc.General())
	assert.False(t, svc.UsableOnUsers("Shared"))
	assert.True(t, svc.UsableOnItems("Shared"))
	assert.True(t, svc.UsableOnUsers("Kids"), "first entry wins")
	assert.Len(t, svc.All(), 2)
}

func TestNewService_AddsMissingGeneral(t *testing.T) {
	svc := NewService([]model.TagOption{{Name: "Vegan", ForUsers: true, ForItems: true}}, "")
	assert.True(t, svc.Exists(model.DefaultGeneralTag))
	assert.Equal(t, []string{model.DefaultGeneralTag, "Vegan"}, svc.ItemTags())
}

func TestCanonical(t *testing.T) {
	svc := Default()
	assert.Equal(t, "Vegan", svc.Canonical("Vegan"))
	assert.Equal(t, model.DefaultGeneralTag, svc.Canonical("Allgemein"))
	assert.Equal(t, "Gluten-Free", svc.Canonical("Glutenfrei"))
	assert.Equal(t, "Mystery", svc.Canonical("Mystery"))

	custom := NewService(model.DefaultTags(), "Everyone")
	assert.Equal(t, "Everyone", custom.Canonical("Allgemein"))
}
