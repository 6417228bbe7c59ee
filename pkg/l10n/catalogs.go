package l10n

var catalogs = map[string]Catalog{
	"en_US": {
		ResponseNameEmpty:          "Display name cannot be empty",
		ResponseEmailInvalid:       "Email address is invalid",
		ResponseServerError:        "Contact could not be saved",
		ResponseConfirm:            "Contact saved successfully",
		ResponseContactNotSelected: "No contact selected",
		PrefsTitle:                 "Save recipients",
		PrefsOption:                "Offer to save unknown recipients as contacts",
		PrefsDescr:                 "After sending a message, recipients missing from your address books are listed so you can save them.",
		DialogTitle:                "Add new contacts",
		DialogContactName:          "Name",
		DialogEmail:                "Email",
		DialogAddSelected:          "Add selected contacts to",
		Loading:                    "Loading...",
	},
	"it_IT": {
		ResponseNameEmpty:          "Il nome visualizzato non può essere vuoto",
		ResponseEmailInvalid:       "L'indirizzo email non è valido",
		ResponseServerError:        "Impossibile salvare il contatto",
		ResponseConfirm:            "Contatto salvato con successo",
		ResponseContactNotSelected: "Nessun contatto selezionato",
		PrefsTitle:                 "Salva destinatari",
		PrefsOption:                "Proponi di salvare i destinatari sconosciuti come contatti",
		PrefsDescr:                 "Dopo l'invio di un messaggio, i destinatari assenti dalle rubriche vengono elencati per poterli salvare.",
		DialogTitle:                "Aggiungi nuovi contatti",
		DialogContactName:          "Nome",
		DialogEmail:                "Email",
		DialogAddSelected:          "Aggiungi i contatti selezionati a",
		Loading:                    "Caricamento...",
	},
	"pt_BR": {
		ResponseNameEmpty:          "O nome de exibição não pode ficar vazio",
		ResponseEmailInvalid:       "O endereço de email é inválido",
		ResponseServerError:        "Não foi possível salvar o contato",
		ResponseConfirm:            "Contato salvo com sucesso",
		ResponseContactNotSelected: "Nenhum contato selecionado",
		PrefsTitle:                 "Salvar destinatários",
		PrefsOption:                "Oferecer salvar destinatários desconhecidos como contatos",
		PrefsDescr:                 "Após enviar uma mensagem, os destinatários ausentes dos seus catálogos são listados para que você possa salvá-los.",
		DialogTitle:                "Adicionar novos contatos",
		DialogContactName:          "Nome",
		DialogEmail:                "Email",
		DialogAddSelected:          "Adicionar contatos selecionados em",
		Loading:                    "Carregando...",
	},
	"de_DE": {
		ResponseNameEmpty:          "Der Anzeigename darf nicht leer sein",
		ResponseEmailInvalid:       "Die E-Mail-Adresse ist ungültig",
		ResponseServerError:        "Der Kontakt konnte nicht gespeichert werden",
		ResponseConfirm:            "Kontakt erfolgreich gespeichert",
		ResponseContactNotSelected: "Kein Kontakt ausgewählt",
		PrefsTitle:                 "Empfänger speichern",
		PrefsOption:                "Speichern unbekannter Empfänger als Kontakte anbieten",
		PrefsDescr:                 "Nach dem Senden einer Nachricht werden Empfänger, die in keinem Adressbuch stehen, zum Speichern angeboten.",
		DialogTitle:                "Neue Kontakte hinzufügen",
		DialogContactName:          "Name",
		DialogEmail:                "E-Mail",
		DialogAddSelected:          "Ausgewählte Kontakte hinzufügen zu",
		Loading:                    "Wird geladen...",
	},
}
