package webui

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/inbucket/rcptcontact/pkg/extension/event"
	"github.com/inbucket/rcptcontact/pkg/server/web"
	"github.com/inbucket/rcptcontact/pkg/webui/sanitize"
	"github.com/rs/zerolog/log"
)

var settingsTemplate = template.Must(template.New("settings").Parse(
	`{{range .}}<fieldset>
<legend>{{.Name}}</legend>
<table class="propform">
{{range .Options}}<tr><td class="title">{{.Title}}</td><td>{{.Content}}</td></tr>
{{end}}</table>
</fieldset>
{{end}}`))

// htmlBlock is a sanitized block ready for the settings template.
type htmlBlock struct {
	Name    template.HTML
	Options []htmlOption
}

type htmlOption struct {
	Title   template.HTML
	Content template.HTML
}

// SettingsSections lists the preference sections contributed by extensions.
func SettingsSections(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	sections, err := sectionList(ctx)
	if err != nil {
		return err
	}
	return web.RenderJSON(w, sections)
}

// SettingsShow renders the blocks of a preference section, as JSON when requested, else as an
// HTML fragment for the host to embed.
func SettingsShow(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	section := ctx.Vars["section"]
	if ok, err := knownSection(ctx, section); err != nil || !ok {
		if err == nil {
			http.NotFound(w, req)
		}
		return err
	}

	list := ctx.ExtHost.Events.PreferencesList.Emit(&event.PrefsList{
		Request: ctx.Request,
		Section: section,
	})
	blocks, err := sanitizeBlocks(list.Blocks)
	if err != nil {
		return err
	}

	if ctx.IsJSON {
		return web.RenderJSON(w, blocks)
	}

	view := make([]htmlBlock, 0, len(blocks))
	for _, b := range blocks {
		hb := htmlBlock{Name: template.HTML(b.Name)}
		for _, o := range b.Options {
			hb.Options = append(hb.Options, htmlOption{
				Title:   template.HTML(o.Title),
				Content: template.HTML(o.Content),
			})
		}
		view = append(view, hb)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Expires", "-1")
	return settingsTemplate.Execute(w, view)
}

// SettingsSave passes the submitted form through the extensions and stores the preferences they
// report.
func SettingsSave(w http.ResponseWriter, req *http.Request, ctx *web.Context) error {
	section := ctx.Vars["section"]
	if ok, err := knownSection(ctx, section); err != nil || !ok {
		if err == nil {
			http.NotFound(w, req)
		}
		return err
	}

	form, err := web.ReadForm(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	save := ctx.ExtHost.Events.PreferencesSave.Emit(&event.PrefsSave{
		Request: ctx.Request,
		Section: section,
		Form:    form,
		Prefs:   make(map[string]bool),
	})
	if ctx.Prefs == nil {
		return fmt.Errorf("no preference store configured")
	}
	for name, value := range save.Prefs {
		if err := ctx.Prefs.Set(req.Context(), ctx.Request.User, name, value); err != nil {
			return fmt.Errorf("saving preference %q: %w", name, err)
		}
		log.Debug().Str("module", "webui").Str("user", ctx.Request.User).Str("pref", name).
			Bool("value", value).Msg("Saved preference")
	}

	prefs := save.Prefs
	if prefs == nil {
		prefs = map[string]bool{}
	}
	return web.RenderJSON(w, &jsonSaved{Section: section, Prefs: prefs})
}

func sectionList(ctx *web.Context) ([]jsonSection, error) {
	list := ctx.ExtHost.Events.PreferencesSectionsList.Emit(&event.PrefsSections{
		Request: ctx.Request,
	})
	sections := make([]jsonSection, 0, len(list.List))
	for _, s := range list.List {
		title, err := sanitize.HTML(s.Title)
		if err != nil {
			return nil, err
		}
		sections = append(sections, jsonSection{ID: s.ID, Title: title})
	}
	return sections, nil
}

func knownSection(ctx *web.Context, id string) (bool, error) {
	sections, err := sectionList(ctx)
	if err != nil {
		return false, err
	}
	for _, s := range sections {
		if s.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func sanitizeBlocks(in []event.PrefsBlock) ([]jsonBlock, error) {
	blocks := make([]jsonBlock, 0, len(in))
	for _, b := range in {
		name, err := sanitize.HTML(b.Name)
		if err != nil {
			return nil, err
		}
		jb := jsonBlock{Name: name, Options: make([]jsonOption, 0, len(b.Options))}
		for _, o := range b.Options {
			title, err := sanitize.Form(o.Title)
			if err != nil {
				return nil, err
			}
			content, err := sanitize.Form(o.Content)
			if err != nil {
				return nil, err
			}
			jb.Options = append(jb.Options, jsonOption{Key: o.Key, Title: title, Content: content})
		}
		blocks = append(blocks, jb)
	}
	return blocks, nil
}
